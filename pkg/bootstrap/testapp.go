package bootstrap

import (
	"log"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Mocks struct {
	DBMock sqlmock.Sqlmock
	Redis  *miniredis.Miniredis
}

// NewTestApp builds an Application backed by sqlmock and an embedded redis.
// miniredis rather than a command mock because the session store's lock and
// rotation paths need real script and TTL semantics.
func NewTestApp() (*Application, *Mocks) {
	sqlDB, dbMock, err := sqlmock.New()
	if err != nil {
		log.Fatal(err)
	}
	conn, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatal(err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	env := &Env{
		Server: Server{Port: 8080, TimeZone: "UTC"},
		JWT: JWTEnv{
			AccessTokenSecret:  "test-access-secret",
			AccessTokenExpiry:  3600,
			RefreshTokenExpiry: 86400,
		},
		Cookie: CookieEnv{Secure: false},
	}

	app := &Application{
		Env:       env,
		Conn:      conn,
		Cache:     cache,
		RedisLock: NewRdLock(cache),
		Engine:    gin.New(),
	}
	return app, &Mocks{DBMock: dbMock, Redis: mr}
}
