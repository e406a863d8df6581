// Package fixture holds the bundled, read-only seed collections for users,
// posts and likes. Fixtures are loaded once and never mutated: accessors hand
// out deep copies that services seed their storage slots from.
package fixture

import (
	"embed"
	"encoding/json"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/cipolleschi/instagram/model"
)

//go:embed data/users.json data/posts.json data/likes.json
var dataFS embed.FS

// Raw fixture records carry timestamps as strings. The original data set was
// authored by hand, so parsing is tolerant of any common format rather than
// strict RFC 3339.
type rawUser struct {
	Id        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Bio       string  `json:"bio"`
	AvatarUrl string  `json:"avatar_url"`
	PushToken *string `json:"push_token"`
	CreatedAt string  `json:"created_at"`
}

type rawPost struct {
	Id        string           `json:"id"`
	Image     string           `json:"image"`
	MediaType string           `json:"media_type"`
	Caption   string           `json:"caption"`
	UserId    string           `json:"user_id"`
	CreatedAt string           `json:"created_at"`
	Author    model.PostAuthor `json:"user"`
}

type rawLike struct {
	Id        string `json:"id"`
	UserId    string `json:"user_id"`
	PostId    string `json:"post_id"`
	CreatedAt string `json:"created_at"`
}

// Data is the immutable set of seed collections.
type Data struct {
	users []model.User
	posts []model.Post
	likes []model.Like
}

// Load parses the embedded collections. Call it once at startup and share
// the result; the loaded Data is safe for concurrent readers.
func Load() (*Data, error) {
	d := &Data{}

	var rawUsers []rawUser
	if err := loadCollection("data/users.json", &rawUsers); err != nil {
		return nil, err
	}
	for _, ru := range rawUsers {
		createdAt, err := dateparse.ParseAny(ru.CreatedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid created_at on fixture user %s", ru.Id)
		}
		d.users = append(d.users, model.User{
			Id:        ru.Id,
			Username:  ru.Username,
			Email:     ru.Email,
			Bio:       ru.Bio,
			AvatarUrl: ru.AvatarUrl,
			PushToken: ru.PushToken,
			CreatedAt: createdAt,
		})
	}

	var rawPosts []rawPost
	if err := loadCollection("data/posts.json", &rawPosts); err != nil {
		return nil, err
	}
	for _, rp := range rawPosts {
		createdAt, err := dateparse.ParseAny(rp.CreatedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid created_at on fixture post %s", rp.Id)
		}
		d.posts = append(d.posts, model.Post{
			Id:        rp.Id,
			Image:     rp.Image,
			MediaType: model.MediaType(rp.MediaType),
			Caption:   rp.Caption,
			UserId:    rp.UserId,
			CreatedAt: createdAt,
			Author:    rp.Author,
		})
	}

	var rawLikes []rawLike
	if err := loadCollection("data/likes.json", &rawLikes); err != nil {
		return nil, err
	}
	for _, rl := range rawLikes {
		createdAt, err := dateparse.ParseAny(rl.CreatedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid created_at on fixture like %s", rl.Id)
		}
		d.likes = append(d.likes, model.Like{
			Id:        rl.Id,
			UserId:    rl.UserId,
			PostId:    rl.PostId,
			CreatedAt: createdAt,
		})
	}

	return d, nil
}

func loadCollection(name string, dest interface{}) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "fail to read embedded fixture %s", name)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrapf(err, "fail to parse fixture %s", name)
	}
	return nil
}

// Users returns a deep copy of the seed users.
func (d *Data) Users() []model.User {
	out := []model.User{}
	copier.CopyWithOption(&out, &d.users, copier.Option{DeepCopy: true})
	return out
}

// Posts returns a deep copy of the seed posts.
func (d *Data) Posts() []model.Post {
	out := []model.Post{}
	copier.CopyWithOption(&out, &d.posts, copier.Option{DeepCopy: true})
	return out
}

// Likes returns a deep copy of the seed likes.
func (d *Data) Likes() []model.Like {
	out := []model.Like{}
	copier.CopyWithOption(&out, &d.likes, copier.Option{DeepCopy: true})
	return out
}

// UserByEmail looks up a seed user by exact email match.
func (d *Data) UserByEmail(email string) (model.User, bool) {
	for _, u := range d.users {
		if u.Email == email {
			user := model.User{}
			copier.CopyWithOption(&user, &u, copier.Option{DeepCopy: true})
			return user, true
		}
	}
	return model.User{}, false
}

// UserById looks up a seed user by id.
func (d *Data) UserById(id string) (model.User, bool) {
	for _, u := range d.users {
		if u.Id == id {
			user := model.User{}
			copier.CopyWithOption(&user, &u, copier.Option{DeepCopy: true})
			return user, true
		}
	}
	return model.User{}, false
}
