package main

import (
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pliu/courier/internal/auth"
	"github.com/pliu/courier/internal/blob"
	"github.com/pliu/courier/internal/bots"
	"github.com/pliu/courier/internal/chat"
	"github.com/pliu/courier/internal/handlers"
	"github.com/pliu/courier/internal/middleware"
	"github.com/pliu/courier/internal/store/sqlstore"
)

type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	DBDriver     string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBDSN        string `env:"DB_DSN" envDefault:"courier.db"`
	MediaDir     string `env:"MEDIA_DIR" envDefault:"media"`
	MediaBaseURL string `env:"MEDIA_BASE_URL" envDefault:"/media"`
	CookieSecret string `env:"COOKIE_SECRET"`
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("zap.NewDevelopment: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		sugar.Fatalf("Cannot parse env config: %v", err)
	}
	auth.SetSecret(cfg.CookieSecret)

	store, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		sugar.Fatalf("Cannot open store: %v", err)
	}

	blobs, err := blob.NewStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		sugar.Fatalf("Cannot open blob store: %v", err)
	}

	engine := bots.NewEngine(sugar, store)
	registry := bots.NewRegistry(sugar, store)
	service := chat.NewService(sugar, store, blobs, engine)

	authHandler := &handlers.AuthHandler{Store: store}
	chatHandler := &handlers.ChatHandler{Service: service}
	botHandler := &handlers.BotHandler{Registry: registry}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(sugar))

	r.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(middleware.Auth)

	api.HandleFunc("/users/find/{username}", chatHandler.FindUser).Methods("GET")
	api.HandleFunc("/users/search", chatHandler.SearchUsers).Methods("GET")
	api.HandleFunc("/contacts", chatHandler.AddContact).Methods("POST")
	api.HandleFunc("/contacts", chatHandler.ListContacts).Methods("GET")

	api.HandleFunc("/items", chatHandler.CreateItem).Methods("POST")
	api.HandleFunc("/items/{id}/members", chatHandler.AddMember).Methods("POST")
	api.HandleFunc("/items/{id}/members", chatHandler.ListMembers).Methods("GET")
	api.HandleFunc("/items/{id}/manage", chatHandler.ManageItem).Methods("POST")
	api.HandleFunc("/items/{id}/members/{userID}/role", chatHandler.ManageMemberRole).Methods("POST")
	api.HandleFunc("/items/{id}/bots", chatHandler.AttachBot).Methods("POST")

	api.HandleFunc("/messages", chatHandler.SendMessage).Methods("POST")
	api.HandleFunc("/messages", chatHandler.GetMessages).Methods("GET")
	api.HandleFunc("/messages/{id}/delete", chatHandler.DeleteMessage).Methods("POST")

	api.HandleFunc("/bots", botHandler.CreateBot).Methods("POST")
	api.HandleFunc("/bots", botHandler.ListBots).Methods("GET")
	api.HandleFunc("/bots/{id}/scripts", botHandler.ListScripts).Methods("GET")
	api.HandleFunc("/bots/{id}/scripts", botHandler.AddScript).Methods("POST")
	api.HandleFunc("/scripts/{id}/delete", botHandler.DeleteScript).Methods("POST")

	// Stored attachments
	r.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(blobs.Dir()))))

	sugar.Infof("Starting server on %s", cfg.Addr)
	sugar.Fatal(http.ListenAndServe(cfg.Addr, r))
}

func loggingMiddleware(logger *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debugf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
		})
	}
}
