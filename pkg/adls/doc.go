// Package adls is the operation-dispatch layer of a client for a
// hierarchical file-store REST service speaking the WebHDFS dialect.
//
// Every operation exists in two forms. The context form, e.g.
// Client.Mkdir(ctx, ...), waits on the transport and honours cancellation.
// The blocking form, Client.Blocking().Mkdir(...), runs on the calling
// goroutine without a context. Both forms share one validation, request
// building and parsing path and put identical requests on the wire.
//
// Expected failures (bad input, transport faults, service errors,
// undecodable replies) are returned as *OpError; use KindOf to classify
// them. Caller contract violations, such as a blank trash hint, panic.
package adls
