package application

import (
	"context"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/google_id"
	"github.com/hymnbook/hymnbook-be/src/server/internal/change/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/change/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/cleanup"
	"github.com/hymnbook/hymnbook-be/src/server/internal/music/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/music/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/storage"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
)

// MusicBodyLimit leaves room for the multipart envelope around the largest
// music file, and stops bigger uploads before they're read
const MusicBodyLimit = "26M"

type LogFormat string

const (
	NoLog   LogFormat = ""
	TextLog LogFormat = "text"
	JSONLog LogFormat = "json"
)

type App struct {
	echo *echo.Echo
	port string
}

type Config struct {
	DynamoConfig       config.Dynamo
	CloudStorageConfig config.CloudStorage
	RabbitMQURL        string
	RabbitMQQueueName  string
	CORSAllowedOrigins []string
	UserValidator      google_id.Validator
	Port               string
	Log                LogFormat
}

// Backends are the outside systems the app talks to
type Backends struct {
	SongStore songentity.Store
	UserStore userentity.Store
	FileStore blobstore.FileStore
	Publisher rabbitmq.Publisher
}

func NewApp(config Config) (App, error) {
	dynamoDB := dynamolib.Connect(config.DynamoConfig)

	fileStore, err := blobstore.NewGoogleFileStore(context.Background(), config.CloudStorageConfig)
	if err != nil {
		return App{}, errors.Wrap(err, "Failed to create the music file store")
	}

	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		return App{}, errors.Wrap(err, "Failed to create rabbitMQ publisher")
	}

	return NewAppWithBackends(config, Backends{
		SongStore: songstorage.NewDB(dynamoDB),
		UserStore: userstorage.NewDB(dynamoDB),
		FileStore: fileStore,
		Publisher: publisher,
	}), nil
}

func NewAppWithBackends(config Config, backends Backends) App {
	e := echo.New()
	e.HideBanner = true

	configureLogging(e, config.Log)
	e.Use(metrics.Middleware())

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
		middlewares := append([]echo.MiddlewareFunc{corsMiddleware}, extra...)

		e.OPTIONS(path, handlerFunc, corsMiddleware)

		switch method {
		case GET:
			e.GET(path, handlerFunc, middlewares...)
		case POST:
			e.POST(path, handlerFunc, middlewares...)
		case PUT:
			e.PUT(path, handlerFunc, middlewares...)
		case DELETE:
			e.DELETE(path, handlerFunc, middlewares...)
		default:
			panic("unhandled http method!")
		}
	}

	userUsecase := userusecase.NewUsecase(backends.UserStore, config.UserValidator)
	cleaner := cleanup.NewMusicCleaner(backends.FileStore, backends.Publisher)
	songUsecase := songusecase.NewUsecase(backends.SongStore, userUsecase, cleaner)

	userGateway := usergateway.NewGateway(userUsecase)
	songGateway := songgateway.NewGateway(songUsecase)
	changeGateway := changegateway.NewGateway(changeusecase.NewUsecase(backends.SongStore, userUsecase))
	syncGateway := syncgateway.NewGateway(syncusecase.NewUsecase(backends.SongStore))
	musicGateway := musicgateway.NewGateway(
		musicusecase.NewUsecase(backends.SongStore, backends.FileStore, userUsecase, cleaner))

	// health check
	handleRoute(GET, "/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// login route
	handleRoute(POST, "/login", userGateway.Login)

	// catalog and sync routes
	handleRoute(GET, "/songs", songGateway.ListSongs)
	handleRoute(GET, "/songs/sync", syncGateway.Sync)
	handleRoute(GET, "/songs/recent", syncGateway.Recent)
	handleRoute(GET, "/songs/:id", func(c echo.Context) error {
		songID := c.Param("id")
		return songGateway.GetSong(c, songID)
	})
	handleRoute(DELETE, "/songs/:id", func(c echo.Context) error {
		songID := c.Param("id")
		return songGateway.DeleteSong(c, songID)
	})

	// review workflow routes
	submitChange := func(c echo.Context) error {
		songID := c.Param("id")
		return changeGateway.SubmitChange(c, songID)
	}
	handleRoute(POST, "/songs/:id/changes", submitChange)
	// older clients still update songs in place
	handleRoute(PUT, "/songs/:id", submitChange)
	handleRoute(GET, "/songs/changes", changeGateway.ListChanges)
	handleRoute(POST, "/songs/changes/:changeId/review", func(c echo.Context) error {
		changeID := c.Param("changeId")
		return changeGateway.ReviewChange(c, changeID)
	})

	// music routes
	handleRoute(GET, "/songs/:id/music", func(c echo.Context) error {
		songID := c.Param("id")
		return musicGateway.Download(c, songID)
	})
	handleRoute(POST, "/songs/:id/music", func(c echo.Context) error {
		songID := c.Param("id")
		return musicGateway.Upload(c, songID)
	}, middleware.BodyLimit(MusicBodyLimit))
	handleRoute(DELETE, "/songs/:id/music", func(c echo.Context) error {
		songID := c.Param("id")
		return musicGateway.Remove(c, songID)
	})

	return App{
		echo: e,
		port: config.Port,
	}
}

func (a *App) Handler() http.Handler {
	return a.echo
}

func (a *App) Start() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	return nil
}

func configureLogging(e *echo.Echo, format LogFormat) {
	switch format {
	case JSONLog:
		log.SetHandler(json.New(os.Stdout))
	case TextLog:
		log.SetHandler(text.New(os.Stderr))
	case NoLog:
		return
	default:
		panic("unhandled log format!")
	}

	e.Use(middleware.Logger())
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}
