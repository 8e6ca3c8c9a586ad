// Package settings builds and stores per-project settings documents.
//
// A Document has three sections (general, admin, project). The general
// section carries the server connection identity: server_url, username and
// password. Two documents describe the same server account when their
// connection identities match; volatile keys such as timestamps never take
// part in that comparison.
package settings
