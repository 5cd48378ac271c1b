package server

import (
	"net"
	"net/http"
	"strconv"
)

// RedirectHandler answers every request with a 301 to the same URI on the
// HTTPS listener. The port is omitted when it is 443.
func RedirectHandler(httpsPort int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, httpsURL(r.Host, httpsPort, r.URL.RequestURI()), http.StatusMovedPermanently)
	})
}

func httpsURL(hostport string, httpsPort int, requestURI string) string {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	if host == "" {
		host = "localhost"
	}
	if httpsPort != 443 {
		host = net.JoinHostPort(host, strconv.Itoa(httpsPort))
	} else if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}
	return "https://" + host + requestURI
}
