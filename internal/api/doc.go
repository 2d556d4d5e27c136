// Package api implements the HTTP REST API of the Wevolor bridge service.
//
// All routes live under /api/v1:
//
//	GET    /health                           dependency status
//	POST   /flows                            start a setup flow {"domain":"wevolor"}
//	POST   /flows/{id}                       submit input for the current step
//	DELETE /flows/{id}                       discard a flow
//	GET    /entries                          list config entries (?domain=)
//	GET    /entries/{id}                     one entry with its entity ids
//	DELETE /entries/{id}                     unload and delete an entry
//	POST   /entries/{id}/reload              unload and set up again
//	POST   /entities/{unique_id}/commands    {"command":"open"}
//
// Flow steps are returned as flow.Result documents. Input that does not
// match the step's form is rejected with 400 and the flow stays on its
// step; errors the wizard itself reports (cannot_connect, no_channels) are
// form errors inside a 200 response.
//
// Device failures on entity commands are returned as 502 with the device
// error message.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
