// Package api implements the HTTP and WebSocket surface of Rackview
// Core.
//
// The REST endpoints use a uniform JSON envelope: {ok:true,data:...}
// on success, {ok:false,error:{code,message,details}} on failure, with
// stable error codes (X102 storage, X104 validation/not-found). Writes
// go through the inventory service, which commits the transaction
// before any event reaches the WebSocket hub, so every device_saved or
// device_deleted frame a client sees corresponds to durable state.
//
// The hub fans every event out to every connected client; there is no
// subscription protocol. Slow clients are dropped rather than allowed
// to stall the broadcast path.
package api
