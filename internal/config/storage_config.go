package config

type StorageConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetRedisAddr is empty when sessions should be kept in memory.
func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}
