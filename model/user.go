package model

import "time"

/*

User is an account seeded from fixture data or synthesized at login/signup

Id: primary key
Username: display handle, defaults to the email's local part
Email: unique across fixture users, checked on signup
Bio: free text
AvatarUrl: logical avatar reference, resolved to a renderable asset by the client
PushToken: optional device push token, nil until registered
CreatedAt: time when the account is created

*/

type User struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	AvatarUrl string    `json:"avatar_url"`
	PushToken *string   `json:"push_token"`
	CreatedAt time.Time `json:"created_at"`
}
