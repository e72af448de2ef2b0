// Demo web app: one container for the process, one scope per request.
//
// Run it, then:
//
//	curl localhost:8080/greet/ada
//	curl -X POST 'localhost:8080/users/linus?name=Linus+Torvalds'
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/beynacjs/ioc"
	"github.com/beynacjs/ioc/config"
	"github.com/beynacjs/ioc/playground/webapp/services"
)

// Config drives the demo server, loaded from WEBAPP_* variables.
type Config struct {
	Addr string `mapstructure:"addr"`
}

func (c *Config) ApplyDefault() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

var configToken = ioc.NewToken[*Config]("webapp.config")

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Logger()

	c := ioc.New(ioc.WithLogger(&logger))

	cfg, err := config.Provide[Config](c, configToken, config.WithEnvPrefix("WEBAPP"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := (Registry{}).Register(c); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/greet/{handle}", scoped(c, &logger, func(sc *ioc.Container, w http.ResponseWriter, req *http.Request) error {
		greeter, err := ioc.Resolve[*services.Greeter](sc, ioc.Ctor(services.NewGreeter))
		if err != nil {
			return err
		}
		trace := ioc.MustResolve[*services.RequestTrace](sc, ioc.Ctor(services.NewRequestTrace))

		handle := chi.URLParam(req, "handle")
		trace.Note("greeting %q", handle)

		_, err = w.Write([]byte(greeter.Greet(handle) + "\n"))
		return err
	}))

	r.Post("/users/{handle}", scoped(c, &logger, func(sc *ioc.Container, w http.ResponseWriter, req *http.Request) error {
		store, err := ioc.Resolve[*services.UserStore](sc, ioc.Ctor(services.NewUserStore))
		if err != nil {
			return err
		}
		trace := ioc.MustResolve[*services.RequestTrace](sc, ioc.Ctor(services.NewRequestTrace))

		handle := chi.URLParam(req, "handle")
		name := req.URL.Query().Get("name")
		if name == "" {
			name = handle
		}
		store.Add(handle, name)
		trace.Note("added user %q", handle)

		w.WriteHeader(http.StatusCreated)
		return nil
	}))

	logger.Info().Str("addr", cfg.Addr).Msg("starting server")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// scoped wraps a handler in a fresh container scope, so scoped bindings like
// the request trace live exactly as long as the request.
func scoped(
	c *ioc.Container,
	logger *zerolog.Logger,
	h func(sc *ioc.Container, w http.ResponseWriter, req *http.Request) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := c.WithScope(func(sc *ioc.Container) error {
			defer func() {
				trace := ioc.MustResolve[*services.RequestTrace](sc, ioc.Ctor(services.NewRequestTrace))
				for _, note := range trace.Drain() {
					logger.Debug().Str("path", req.URL.Path).Msg(note)
				}
			}()
			return h(sc, w, req)
		})
		if err != nil {
			logger.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
