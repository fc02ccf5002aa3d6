package domain

type Dialect string

const (
	DialectVMess  Dialect = "vmess"
	DialectVLESS  Dialect = "vless"
	DialectTrojan Dialect = "trojan"
)

const (
	NetworkTCP  = "tcp"
	NetworkWS   = "ws"
	NetworkGRPC = "grpc"
)

// DecodedLink is one successfully decoded share link. The concrete type is
// always one of *VMessLink, *VLESSLink or *TrojanLink.
type DecodedLink interface {
	Dialect() Dialect
	Base() *Common
	sealed()
}

// Common holds the fields every dialect normalizes to.
type Common struct {
	Server      string
	Port        uint16
	Network     string
	TLS         *TLS
	Transport   *Transport
	DisplayName string
}

type TLS struct {
	ServerName  string
	ALPN        []string
	Fingerprint string
}

type TransportKind string

const (
	TransportWS   TransportKind = "ws"
	TransportGRPC TransportKind = "grpc"
)

type Transport struct {
	Kind        TransportKind
	Path        string
	Host        string
	ServiceName string
}

type VMessLink struct {
	Common
	UUID     string
	Security string
	AlterID  int
}

type VLESSLink struct {
	Common
	UUID string
}

type TrojanLink struct {
	Common
	Password string
}

func (l *VMessLink) Dialect() Dialect { return DialectVMess }
func (l *VMessLink) Base() *Common    { return &l.Common }
func (l *VMessLink) sealed()          {}

func (l *VLESSLink) Dialect() Dialect { return DialectVLESS }
func (l *VLESSLink) Base() *Common    { return &l.Common }
func (l *VLESSLink) sealed()          {}

func (l *TrojanLink) Dialect() Dialect { return DialectTrojan }
func (l *TrojanLink) Base() *Common    { return &l.Common }
func (l *TrojanLink) sealed()          {}
