// Package api is the HTTP client for the automation builder backend.
//
// Every call takes a context, sends JSON with a fresh X-Request-ID and an
// optional bearer token, and makes exactly one attempt. Failures are
// returned as *Error carrying the backend's "detail" message when it sent
// one, so callers can show it inline:
//
//	client := api.NewClient(settings.APIURL)
//	design, err := client.DesignWorkflow(ctx, automation.DesignRequest{
//	    TaskDescription: "Tell me when the pricing page changes",
//	})
//	if err != nil {
//	    fmt.Println(api.Message(err))
//	}
//
// Watch subscribes to the optional websocket event feed that announces
// hosted automation changes.
package api
