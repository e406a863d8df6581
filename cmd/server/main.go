package main

import (
	"context"
	"net/http"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/cipolleschi/instagram/fixture"
	"github.com/cipolleschi/instagram/server"
	"github.com/cipolleschi/instagram/service"
	"github.com/cipolleschi/instagram/storage"
	"github.com/cipolleschi/instagram/utils"
	"github.com/cipolleschi/instagram/utils/dotenv"
	. "github.com/cipolleschi/instagram/utils/flag"
	. "github.com/cipolleschi/instagram/utils/log"
)

func init() {
	Log.Info("api server initialized")
}

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Log.Info("api server shutdown")
}

// newStore picks the persistence backend: Redis when REDIS_HOST is set,
// otherwise process memory (state is lost on restart).
func newStore() storage.Store {
	if os.Getenv("REDIS_HOST") == "" {
		Log.Info("REDIS_HOST not set, falling back to in-memory storage")
		return storage.NewMemoryStore()
	}
	store, err := storage.GetRedisStore()
	if err != nil {
		Log.Fatal("cannot connect to redis: ", err)
	}
	return store
}

// newStatsdClient returns nil when no agent is configured, which disables
// notification counters but keeps everything else running.
func newStatsdClient() *statsd.Client {
	addr := os.Getenv("DD_AGENT_ADDR")
	if addr == "" {
		return nil
	}
	client, err := statsd.New(addr)
	if err != nil {
		Log.Error("cannot create statsd client: ", err)
		return nil
	}
	return client
}

func main() {
	defer cleanup()

	Parse()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	fixtures, err := fixture.Load()
	if err != nil {
		Log.Fatal("cannot load fixture data: ", err)
	}

	store := newStore()
	notifier := service.NewNotifier()

	authService := service.NewAuthService(store, fixtures, notifier)
	postService := service.NewPostService(store, fixtures, authService, notifier)
	profileService := service.NewProfileService(store, fixtures, postService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reporter := service.NewReporter(newStatsdClient(), notifier)
	go reporter.ProcessNotifications(ctx)

	// Log session transitions so the state machine is observable during
	// development.
	go func() {
		for event := range authService.Sessions.AddNewConnection(ctx) {
			Log.Infof("session event: %s", event.Type)
		}
	}()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(*ServiceName))

	server.NewServer(authService, postService, profileService).RegisterRoutes(router)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
