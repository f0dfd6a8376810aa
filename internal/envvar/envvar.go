package envvar

const (
	// EstimoEnv is the environment variable used to determine the environment
	EstimoEnv = "ESTIMO_ENV"

	// EstimoServerHTTPPort is the environment variable used to determine the HTTP port
	EstimoServerHTTPPort = "ESTIMO_SERVER_HTTP_PORT"

	// EstimoServerGRPCPort is the environment variable used to determine the gRPC port
	EstimoServerGRPCPort = "ESTIMO_SERVER_GRPC_PORT"

	// EstimoRoot is the environment variable used to determine the install root
	EstimoRoot = "ESTIMO_ROOT"

	// EstimoArtifactPath is the environment variable used to override the artifact path
	EstimoArtifactPath = "ESTIMO_ARTIFACT_PATH"

	// EstimoOrigin is the environment variable used to override the origin remote
	EstimoOrigin = "ESTIMO_ORIGIN"
)

// EstimoRemoteToken is the environment variable holding the raw download token
const EstimoRemoteToken = "ESTIMO_REMOTE_TOKEN"
