package config

import "strings"

// Environment is the deployment stage the process runs in, taken from app.env.
type Environment string

const (
	EnvUndefined Environment = ""
	EnvLocal     Environment = "local"
	EnvDev       Environment = "dev"
	EnvUAT       Environment = "uat"
	EnvProd      Environment = "prod"
)

// ParseEnvironment is case insensitive. Unknown values map to EnvUndefined.
func ParseEnvironment(s string) Environment {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case EnvLocal, EnvDev, EnvUAT, EnvProd:
		return env
	default:
		return EnvUndefined
	}
}

func (e Environment) String() string {
	if e == EnvUndefined {
		return "undefined"
	}
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == EnvProd
}

// AllowsDebugLevel is false for every shared environment.
func (e Environment) AllowsDebugLevel() bool {
	return e == EnvLocal || e == EnvUndefined
}

func (a App) Environment() Environment {
	return ParseEnvironment(a.Env)
}
