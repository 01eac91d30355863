package ws

import (
	"net"
	"net/http"

	"golang.org/x/net/proxy"

	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
)

// ProxyHTTPClient builds an http client that dials through a SOCKS5 proxy,
// for relays reached over tor or similar. addr is host:port.
func ProxyHTTPClient(addr string) (hc *http.Client, err error) {
	var dialer proxy.Dialer
	if dialer, err = proxy.SOCKS5("tcp", addr, nil, proxy.Direct); chk.E(err) {
		return
	}
	hc = &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.T, network, address string) (
				conn net.Conn, err error,
			) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, address)
				}
				return dialer.Dial(network, address)
			},
		},
	}
	return
}
