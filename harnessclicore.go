package harness_cli_core

import "fmt"

var agentName = "harness-cli-core"
var agentVersion = "1.0.0"

func GetVersion() string {
	return agentVersion
}

func GetName() string {
	return agentName
}

func GetUserAgent() string {
	return fmt.Sprintf("%s/%s", GetName(), GetVersion())
}
