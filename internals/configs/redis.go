package configs

import (
	"context"
	"log"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

// GetRedisLock nil kalau REDIS_ADDRESS tidak diset; pemanggil wajib nil-safe.
func GetRedisLock() *redislock.Client {
	return locker
}

func GetRedisDB() *redis.Client {
	return rdb
}

// ConnectRedis satu kali percobaan; gagal = jalan tanpa lock terdistribusi.
func ConnectRedis() {
	addr := Conf.GetString("REDIS_ADDRESS")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDRESS tidak diset; idempotency lock pakai DB saja")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: Conf.GetString("REDIS_PASSWORD"),
		DB:       0,
		PoolSize: 20,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("failed to connect redis (addr=%s): %v; lanjut tanpa redis", addr, err)
		_ = client.Close()
		return
	}
	rdb = client
	locker = redislock.New(rdb)
	log.Printf("connected to redis (addr=%s)", addr)
}

func CloseRedis() {
	if rdb != nil {
		_ = rdb.Close()
	}
}

// IsTokenBlacklisted dipakai AuthJWT; key di-set service auth saat logout
// (TTL = sisa umur token). Tanpa redis selalu false.
func IsTokenBlacklisted(rawToken string) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := rdb.Exists(ctx, "token_blacklist:"+rawToken).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
