// Package unix implements the local-domain socket connector for the driver's
// messaging port.
package unix
