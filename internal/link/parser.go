package link

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"singbox-converter/internal/domain"
)

const (
	vmessPrefix  = "vmess://"
	vlessPrefix  = "vless://"
	trojanPrefix = "trojan://"
)

// Decode parses a single share link. Every failure is reported as a
// *DecodeError; Decode never panics on malformed input.
func Decode(raw string) (domain.DecodedLink, error) {
	raw = strings.TrimSpace(raw)

	// Each branch checks err itself so a typed nil never leaks into the interface.
	switch {
	case strings.HasPrefix(raw, vmessPrefix):
		l, err := DecodeVMess(raw)
		if err != nil {
			return nil, err
		}
		return l, nil
	case strings.HasPrefix(raw, vlessPrefix):
		l, err := DecodeVLESS(raw)
		if err != nil {
			return nil, err
		}
		return l, nil
	case strings.HasPrefix(raw, trojanPrefix):
		l, err := DecodeTrojan(raw)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		scheme := ""
		if i := strings.Index(raw, "://"); i > 0 {
			scheme = raw[:i]
		}
		return nil, newDecodeError(ErrUnsupportedScheme, scheme, truncate(raw, 50), nil)
	}
}

// SplitLines turns a block of user input into trimmed, non-blank lines.
func SplitLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// vmessJSON is the payload of a base64 vmess link. Port and aid show up
// both as strings and numbers in the wild, alpn as a comma separated
// string or an array.
type vmessJSON struct {
	Ps          string `json:"ps"`
	Add         string `json:"add"`
	Port        any    `json:"port"`
	ID          string `json:"id"`
	Aid         any    `json:"aid"`
	Scy         string `json:"scy"`
	Net         string `json:"net"`
	TLS         string `json:"tls"`
	Host        string `json:"host"`
	Path        string `json:"path"`
	ServiceName string `json:"serviceName"`
	SNI         string `json:"sni"`
	FP          string `json:"fp"`
	ALPN        any    `json:"alpn"`
}

func DecodeVMess(raw string) (*domain.VMessLink, error) {
	const scheme = "vmess"

	payload := strings.TrimPrefix(strings.TrimSpace(raw), vmessPrefix)
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, newDecodeError(ErrEncoding, scheme, "invalid base64 payload", err)
	}

	var v vmessJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, newDecodeError(ErrEncoding, scheme, "invalid json payload", err)
	}

	if v.Add == "" {
		return nil, newDecodeError(ErrMissingField, scheme, "add", nil)
	}
	portStr := scalarString(v.Port)
	if portStr == "" {
		return nil, newDecodeError(ErrMissingField, scheme, "port", nil)
	}
	if v.ID == "" {
		return nil, newDecodeError(ErrMissingField, scheme, "id", nil)
	}

	port, err := parsePort(portStr)
	if err != nil {
		return nil, newDecodeError(ErrEncoding, scheme, "invalid port", err)
	}

	network := v.Net
	if network == "" {
		network = domain.NetworkTCP
	}

	security := v.Scy
	if security == "" {
		security = "auto"
	}

	alterID, _ := strconv.Atoi(scalarString(v.Aid))

	name := v.Ps
	if name == "" {
		name = "VMess_Node_" + v.Add
	}

	l := &domain.VMessLink{
		Common: domain.Common{
			Server:      v.Add,
			Port:        port,
			Network:     network,
			DisplayName: name,
		},
		UUID:     v.ID,
		Security: security,
		AlterID:  alterID,
	}

	if v.TLS == "tls" {
		l.TLS = buildTLS(v.Add, firstNonEmpty(v.SNI, v.Host), v.FP, listString(v.ALPN))
	}

	serviceName := v.ServiceName
	if serviceName == "" {
		serviceName = v.Path
	}
	l.Transport = buildTransport(network, v.Path, v.Host, serviceName)

	return l, nil
}

func DecodeVLESS(raw string) (*domain.VLESSLink, error) {
	const scheme = "vless"

	p, err := parseURI(raw, scheme)
	if err != nil {
		return nil, err
	}

	name := p.fragment
	if name == "" {
		name = "VLESS_Node_" + p.host
	}

	network := p.query.Get("type")
	if network == "" {
		network = domain.NetworkTCP
	}

	l := &domain.VLESSLink{
		Common: domain.Common{
			Server:      p.host,
			Port:        p.port,
			Network:     network,
			DisplayName: name,
		},
		UUID: p.user,
	}

	if p.query.Get("security") == "tls" {
		l.TLS = tlsFromQuery(p)
	}
	l.Transport = buildTransport(network, p.query.Get("path"), p.query.Get("host"), p.query.Get("serviceName"))

	return l, nil
}

func DecodeTrojan(raw string) (*domain.TrojanLink, error) {
	const scheme = "trojan"

	p, err := parseURI(raw, scheme)
	if err != nil {
		return nil, err
	}

	name := p.fragment
	if name == "" {
		name = "Trojan_Node_" + p.host
	}

	network := p.query.Get("type")
	if network == "" {
		network = domain.NetworkTCP
	}

	l := &domain.TrojanLink{
		Common: domain.Common{
			Server:      p.host,
			Port:        p.port,
			Network:     network,
			DisplayName: name,
		},
		Password: p.user,
	}

	// Trojan runs over TLS in practice; an sni alone is enough to enable it.
	if p.query.Get("security") == "tls" || p.query.Has("sni") {
		l.TLS = tlsFromQuery(p)
	}
	l.Transport = buildTransport(network, p.query.Get("path"), p.query.Get("host"), p.query.Get("serviceName"))

	return l, nil
}

type parsedURI struct {
	user     string
	host     string
	port     uint16
	query    url.Values
	fragment string
}

func parseURI(raw, scheme string) (*parsedURI, error) {
	// The label is cut off first so stray '%' signs in it cannot fail the
	// whole link.
	rest, fragment, _ := strings.Cut(strings.TrimSpace(raw), "#")

	u, err := url.Parse(rest)
	if err != nil {
		return nil, newDecodeError(ErrMalformedURI, scheme, "cannot parse uri", err)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, newDecodeError(ErrMalformedURI, scheme, "missing user info", nil)
	}

	host := u.Hostname()
	if host == "" {
		return nil, newDecodeError(ErrMalformedURI, scheme, "missing host", nil)
	}
	if u.Port() == "" {
		return nil, newDecodeError(ErrMalformedURI, scheme, "missing port", nil)
	}
	port, err := parsePort(u.Port())
	if err != nil {
		return nil, newDecodeError(ErrMalformedURI, scheme, "invalid port", err)
	}

	return &parsedURI{
		user:     u.User.Username(),
		host:     host,
		port:     port,
		query:    u.Query(),
		fragment: unescapeLabel(fragment),
	}, nil
}

// unescapeLabel percent-decodes a link label. Sequences that are not valid
// escapes are kept as literal text.
func unescapeLabel(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func tlsFromQuery(p *parsedURI) *domain.TLS {
	q := p.query
	return buildTLS(p.host, firstNonEmpty(q.Get("sni"), q.Get("host")), q.Get("fp"), q.Get("alpn"))
}

func buildTLS(server, serverName, fingerprint, alpn string) *domain.TLS {
	t := &domain.TLS{
		ServerName:  firstNonEmpty(serverName, server),
		Fingerprint: fingerprint,
	}
	if alpn != "" {
		for _, proto := range strings.Split(alpn, ",") {
			if proto = strings.TrimSpace(proto); proto != "" {
				t.ALPN = append(t.ALPN, proto)
			}
		}
	}
	return t
}

func buildTransport(network, path, host, serviceName string) *domain.Transport {
	switch network {
	case domain.NetworkWS:
		if path == "" {
			path = "/"
		}
		return &domain.Transport{
			Kind: domain.TransportWS,
			Path: path,
			Host: host,
		}
	case domain.NetworkGRPC:
		return &domain.Transport{
			Kind:        domain.TransportGRPC,
			ServiceName: serviceName,
		}
	default:
		return nil
	}
}

// decodeBase64 decodes standard base64, restoring stripped padding first.
// URL-safe payloads are accepted as a fallback.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, nil
	}
	if b, urlErr := base64.URLEncoding.DecodeString(s); urlErr == nil {
		return b, nil
	}
	return nil, err
}

func parsePort(s string) (uint16, error) {
	port, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, err
	}
	if port == 0 {
		return 0, fmt.Errorf("port must be between 1 and 65535")
	}
	return uint16(port), nil
}

// scalarString renders a JSON scalar (string or number) as a string.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// listString joins a JSON string array with commas. Any other value is
// handled by scalarString.
func listString(v any) string {
	items, ok := v.([]any)
	if !ok {
		return scalarString(v)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := scalarString(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
