package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/estimo/internal/envvar"
)

const embeddedSchemaURL = "estimo.v1.schema.json"

//go:embed estimo.v1.schema.json
var embeddedSchema []byte

// LoadAndValidate loads and validates the configuration. An empty schemaPath
// selects the embedded schema.
func LoadAndValidate(path, schemaPath string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config: %w", err)
	}

	return Parse(data, schemaPath)
}

// Parse validates raw YAML against the schema and decodes it over the defaults.
func Parse(data []byte, schemaPath string) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	schema, err := compileSchema(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("config: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("config: config validation failed: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal into Config struct: %w", err)
	}
	fillZero(config)

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides config fields from ESTIMO_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(envvar.EstimoServerHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s: %w", envvar.EstimoServerHTTPPort, err)
		}
		cfg.Server.HTTPPort = port
	}
	if v := os.Getenv(envvar.EstimoServerGRPCPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s: %w", envvar.EstimoServerGRPCPort, err)
		}
		cfg.Server.GRPCPort = port
	}
	if v := os.Getenv(envvar.EstimoRoot); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv(envvar.EstimoArtifactPath); v != "" {
		cfg.Artifact.Path = v
	}
	if v := os.Getenv(envvar.EstimoOrigin); v != "" {
		cfg.Artifact.Remote.Origin = v
	}
	if v := os.Getenv(envvar.EstimoRemoteToken); v != "" {
		cfg.Artifact.Remote.Token = v
	}

	return nil
}

func compileSchema(schemaPath string) (*jsonschema.Schema, error) {
	if schemaPath != "" {
		return jsonschema.Compile(schemaPath)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(embeddedSchemaURL, bytes.NewReader(embeddedSchema)); err != nil {
		return nil, err
	}

	return compiler.Compile(embeddedSchemaURL)
}
