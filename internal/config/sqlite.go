package config

type SqliteConfig struct {
	DbPath string `yaml:"path"`
}

func (s *SqliteConfig) Path() string {
	if s.DbPath == "" {
		return "data/piggypal.db"
	}
	return s.DbPath
}
