// Package websocket lets clients watch games in real time.
//
// A central Hub manages all connections in a hub-and-spoke model. Each
// client connection gets a dedicated read and write goroutine. Watchers
// attach to one game via the ?game=<id> query parameter of the /ws
// endpoint; every command executed against that game fans out to its
// watchers as a JSON Message carrying the engine output.
//
// Watching is one-directional: frames sent by clients are drained only
// to service pings and detect disconnects. Commands always travel over
// the REST API, the MCP transport, or the terminal client.
package websocket
