package providers

import "github.com/MikkoParkkola/nab/fetch"

func fakeResponse(status int, headers map[string][]string) fetch.Response {
	return fetch.Response{Status: status, Headers: headers}
}
