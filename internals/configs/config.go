package configs

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// Conf sumber konfigurasi tunggal (ENV > .env > default)
	Conf = newViper()

	JWTSecret string
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_NAME", "Schoolku")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_STATEMENT_TIMEOUT_MS", 3000)
	v.SetDefault("DB_AUTOMIGRATE", false)

	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("DUE_REPORT_MAX_STUDENTS", 5000)
	v.SetDefault("FEE_COLLECT_LOCK_TTL", 15*time.Second)

	v.SetDefault("MAIL_FROM", "no-reply@schoolku.id")
	v.SetDefault("MIDTRANS_USE_PROD", false)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = Conf.GetString("JWT_SECRET")
	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}

	SetupLogger(Conf.GetString("LOG_LEVEL"), Conf.GetString("ROLLBAR_TOKEN"), Conf.GetString("APP_ENV"))
}

func GetEnv(key string, defaultValue ...string) string {
	value := Conf.GetString(key)
	if value == "" && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func IsProduction() bool {
	return strings.EqualFold(Conf.GetString("APP_ENV"), "production")
}
