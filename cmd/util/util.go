package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dDoc/driver/client"
	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds common driver connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "servers"
	cmd.PersistentFlags().String(key, "localhost:27017", WrapString("Server address (host[:port] or unix socket path). A replica pair is given as two comma-separated addresses"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("Socket receive/send timeout in seconds, 0 disables"))

	key = "auto-reconnect"
	cmd.PersistentFlags().Bool(key, true, WrapString("Lazily reconnect a failed connection on next use"))

	key = "reconnect-interval"
	cmd.PersistentFlags().Int(key, common.DefaultReconnectIntervalSec, WrapString("Minimum seconds between reconnect attempts against a down node"))

	key = "socket-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 = system default)"))

	key = "socket-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 = system default)"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (tcp endpoints only)"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds (tcp endpoints only)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, 0, WrapString("The linger time in seconds (tcp endpoints only)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("Log level (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("ddoc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads the driver configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond:        viper.GetInt("timeout"),
		AutoReconnect:        viper.GetBool("auto-reconnect"),
		ReconnectIntervalSec: viper.GetInt("reconnect-interval"),
		Socket: common.SocketConf{
			WriteBufferSize: viper.GetInt("socket-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("socket-read-buffer") * 1024,
		},
		TCP: common.TCPConf{
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
		},
	}
}

// GetClient connects to the configured server or replica pair. The second
// return value is the single Conn when one server is configured, nil for a
// pair (pair-internal commands like ismaster need the single form).
func GetClient() (client.IDBClient, *client.Conn, error) {
	common.InitLoggers(viper.GetString("log-level"))

	config := GetClientConfig()
	codec := document.NewJSONCodec()

	servers := strings.Split(viper.GetString("servers"), ",")
	for i := range servers {
		servers[i] = strings.TrimSpace(servers[i])
	}

	switch len(servers) {
	case 1:
		conn := client.NewConn(*config, codec)
		if err := conn.Connect(servers[0]); err != nil && !config.AutoReconnect {
			return nil, nil, err
		}
		return conn, conn, nil
	case 2:
		pair := client.NewPairedConn(*config, codec)
		if err := pair.Connect(servers[0], servers[1]); err != nil {
			return nil, nil, err
		}
		return pair, nil, nil
	default:
		return nil, nil, fmt.Errorf("expected one server or a pair, got %d addresses", len(servers))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
