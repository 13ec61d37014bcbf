// Package startup handles environment configuration, the startup banner and
// the sectioned startup/shutdown logging that frames the server lifecycle.
package startup
