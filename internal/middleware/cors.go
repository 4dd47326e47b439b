package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// corsBaseHeaders は全てのクライアントが送信しうるリクエストヘッダー。
var corsBaseHeaders = []string{"Content-Type", CSRFHeaderName}

// ParseAllowedOrigins はカンマ区切りのオリジン列を分割する。空要素は捨てる。
func ParseAllowedOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// NewCORSMiddleware は許可オリジンに対するCORSミドルウェアを返す。
// allowedOriginsはカンマ区切りで複数指定できる。credentialsを送信するため
// ワイルドカードは使わず、許可されたOriginをそのまま返す。
// Originヘッダーのないリクエストには先頭のオリジンを返す。
// extraHeadersはContent-TypeとCSRFヘッダーに加えて許可するヘッダー。
func NewCORSMiddleware(allowedOrigins string, extraHeaders ...string) func(next http.Handler) http.Handler {
	origins := ParseAllowedOrigins(allowedOrigins)
	allowHeaders := strings.Join(append(slices.Clone(corsBaseHeaders), extraHeaders...), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			switch {
			case origin == "" && len(origins) > 0:
				origin = origins[0]
			case !slices.Contains(origins, origin):
				origin = ""
			}

			if origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Max-Age", "86400")
			}

			// プリフライトはハンドラーまで到達させない
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
