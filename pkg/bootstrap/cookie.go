package bootstrap

type CookieEnv struct {
	Domain string `env:"DOMAIN" envDefault:""`
	Secure bool   `env:"SECURE" envDefault:"true"`
}
