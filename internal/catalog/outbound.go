package catalog

import (
	"fmt"

	C "github.com/sagernet/sing-box/constant"
	"github.com/sagernet/sing-box/option"
	"github.com/sagernet/sing/common/json/badoption"

	"singbox-converter/internal/domain"
)

// FromLink converts a decoded link into a sing-box outbound node with the
// given tag. The node starts with "tag" and "type", followed by the
// dialect's outbound options.
func FromLink(link domain.DecodedLink, tag string) (Node, error) {
	base := link.Base()
	server := option.ServerOptions{
		Server:     base.Server,
		ServerPort: base.Port,
	}
	tls := option.OutboundTLSOptionsContainer{TLS: outboundTLS(base.TLS)}
	transport := outboundTransport(base.Transport)

	var (
		outboundType string
		options      any
	)
	switch l := link.(type) {
	case *domain.VMessLink:
		outboundType = C.TypeVMess
		options = &option.VMessOutboundOptions{
			ServerOptions:               server,
			UUID:                        l.UUID,
			Security:                    l.Security,
			AlterId:                     l.AlterID,
			OutboundTLSOptionsContainer: tls,
			Transport:                   transport,
		}
	case *domain.VLESSLink:
		outboundType = C.TypeVLESS
		options = &option.VLESSOutboundOptions{
			ServerOptions:               server,
			UUID:                        l.UUID,
			OutboundTLSOptionsContainer: tls,
			Transport:                   transport,
		}
	case *domain.TrojanLink:
		outboundType = C.TypeTrojan
		options = &option.TrojanOutboundOptions{
			ServerOptions:               server,
			Password:                    l.Password,
			OutboundTLSOptionsContainer: tls,
			Transport:                   transport,
		}
	default:
		return Node{}, fmt.Errorf("catalog: unhandled link type %T", link)
	}

	return outboundNode(outboundType, tag, options)
}

// outboundNode prefixes the marshaled options with the outbound's tag and
// type, the way sing-box lays out an outbound entry.
func outboundNode(outboundType, tag string, options any) (Node, error) {
	body, err := NewNode(options)
	if err != nil {
		return Node{}, fmt.Errorf("encoding %s outbound %q: %w", outboundType, tag, err)
	}

	n := Node{fields: make([]field, 0, len(body.fields)+2)}
	n = n.with(keyTag, mustMarshal(tag))
	n = n.with(keyType, mustMarshal(outboundType))
	n.fields = append(n.fields, body.fields...)
	return n, nil
}

func outboundTLS(t *domain.TLS) *option.OutboundTLSOptions {
	if t == nil {
		return nil
	}
	out := &option.OutboundTLSOptions{
		Enabled:    true,
		ServerName: t.ServerName,
	}
	if t.Fingerprint != "" {
		out.UTLS = &option.OutboundUTLSOptions{Enabled: true, Fingerprint: t.Fingerprint}
	}
	if len(t.ALPN) > 0 {
		out.ALPN = badoption.Listable[string](append([]string(nil), t.ALPN...))
	}
	return out
}

func outboundTransport(t *domain.Transport) *option.V2RayTransportOptions {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case domain.TransportWS:
		out := &option.V2RayTransportOptions{Type: C.V2RayTransportTypeWebsocket}
		out.WebsocketOptions.Path = t.Path
		if t.Host != "" {
			out.WebsocketOptions.Headers = badoption.HTTPHeader{"Host": {t.Host}}
		}
		return out
	case domain.TransportGRPC:
		out := &option.V2RayTransportOptions{Type: C.V2RayTransportTypeGRPC}
		out.GRPCOptions.ServiceName = t.ServiceName
		return out
	default:
		return nil
	}
}
