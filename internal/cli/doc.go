// Package cli provides the interactive vehicle registry terminal client.
//
// It wires configuration, storage, the identity and vehicle services, and a
// REPL. On start it runs the first-launch bootstrap, optionally seeds demo
// vehicles, restores the previous session and then reads commands until the
// user exits.
//
// Regular users register vehicles and browse their own records; admins see
// every vehicle and approve or reject pending ones.
package cli
