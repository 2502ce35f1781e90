// Package app is the application root. It wires the key vault, the crypto
// engine, the document cipher, the connection registry and the document
// store.
//
// Start decides between two modes. With every required vault key present
// and the store reachable the app starts in ModeNormal and loads workspaces,
// extensions and settings. Otherwise it starts in ModeEmergency, where only
// the cloud services setup is available and none of the stores or engines
// exist.
package app
