package server

import (
	"errors"
	"strconv"
)

type Config struct {
	Port        string
	CorsOrigins []string
}

func (c *Config) Validate() error {
	if c.Port == "" {
		c.Port = "8080"
	}
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if len(c.CorsOrigins) == 0 {
		c.CorsOrigins = []string{"*"}
	}
	return nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return errors.New("port must be a number")
	}
	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
