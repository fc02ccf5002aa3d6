package converter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"singbox-converter/internal/domain"
	"singbox-converter/internal/link"
)

const (
	vlessNodeA = "vless://uuid2@5.6.7.8:443?type=ws&path=/ws&host=example.com&security=tls&sni=example.com#SG%20-%20NodeA"
	trojanNode = "trojan://secret@t.example.com:443?sni=t.example.com#Node"
)

type outbound map[string]any

type document struct {
	Outbounds []outbound `json:"outbounds"`
}

func vmessScenarioA() string {
	payload := `{"add":"1.2.3.4","port":"443","id":"uuid1","ps":"US - Node1","net":"tcp"}`
	return "vmess://" + base64.StdEncoding.EncodeToString([]byte(payload))
}

func loadTemplate(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/template.json")
	require.NoError(t, err)
	return string(data)
}

func decodeDocument(t *testing.T, data []byte) document {
	t.Helper()
	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func (d document) find(tag string) outbound {
	for _, o := range d.Outbounds {
		if o["tag"] == tag {
			return o
		}
	}
	return nil
}

func (d document) count(tag string) int {
	n := 0
	for _, o := range d.Outbounds {
		if o["tag"] == tag {
			n++
		}
	}
	return n
}

func members(t *testing.T, o outbound) []string {
	t.Helper()
	require.NotNil(t, o)
	raw, ok := o["outbounds"].([]any)
	require.True(t, ok, "outbounds is not a list: %v", o["outbounds"])
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(string))
	}
	return out
}

type recordingMetrics struct {
	mu           sync.Mutex
	conversions  int
	failed       int
	links        map[string]int
	decodeErrors map[string]int
	exports      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		links:        make(map[string]int),
		decodeErrors: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordConversion(_ domain.Report, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions++
	if err != nil {
		m.failed++
	}
}

func (m *recordingMetrics) RecordLink(dialect string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := "success"
	if !ok {
		status = "failure"
	}
	m.links[dialect+"/"+status]++
}

func (m *recordingMetrics) RecordDecodeError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeErrors[kind]++
}

func (m *recordingMetrics) RecordExport(string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports++
}

func TestConvertScenarios(t *testing.T) {
	tests := []struct {
		name     string
		links    string
		validate func(*testing.T, document, domain.Report)
	}{
		{
			name:  "vmess link with country label",
			links: vmessScenarioA(),
			validate: func(t *testing.T, doc document, report domain.Report) {
				require.Len(t, report.Converted, 1)
				tag := report.Converted[0]
				assert.True(t, strings.HasPrefix(tag, "🇺🇸"), tag)
				assert.True(t, strings.HasSuffix(tag, "#1"), tag)

				o := doc.find(tag)
				require.NotNil(t, o)
				assert.Equal(t, "vmess", o["type"])
				assert.Equal(t, "1.2.3.4", o["server"])
				assert.Equal(t, float64(443), o["server_port"])
				assert.Equal(t, "uuid1", o["uuid"])
			},
		},
		{
			name:  "vless ws over tls",
			links: vlessNodeA,
			validate: func(t *testing.T, doc document, report domain.Report) {
				require.Len(t, report.Converted, 1)
				tag := report.Converted[0]
				assert.Equal(t, "🇸🇬 NodeA #1", tag)

				o := doc.find(tag)
				require.NotNil(t, o)
				assert.NotContains(t, o, "network")
				transport, ok := o["transport"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "ws", transport["type"])
				assert.Equal(t, "/ws", transport["path"])
				tls, ok := o["tls"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, true, tls["enabled"])
				assert.Equal(t, "example.com", tls["server_name"])
			},
		},
		{
			name:  "identical labels get distinct tags",
			links: trojanNode + "\n" + trojanNode,
			validate: func(t *testing.T, doc document, report domain.Report) {
				assert.Equal(t, []string{"🌎 Node #1", "🌎 Node #2"}, report.Converted)
				assert.Equal(t, 1, doc.count("🌎 Node #1"))
				assert.Equal(t, 1, doc.count("🌎 Node #2"))
			},
		},
		{
			name:  "excluded selector keeps its members",
			links: vlessNodeA,
			validate: func(t *testing.T, doc document, _ domain.Report) {
				assert.Equal(t, []string{"direct"}, members(t, doc.find("WhatsApp")))
				assert.Equal(t, []string{"block", "direct"}, members(t, doc.find("Option ADs")))
			},
		},
		{
			name:  "malformed line is skipped",
			links: "not-a-link\n" + vlessNodeA,
			validate: func(t *testing.T, doc document, report domain.Report) {
				assert.Len(t, report.Converted, 1)
				require.Len(t, report.Failed, 1)
				assert.Equal(t, 1, report.Failed[0].Line)
				assert.True(t, errors.Is(report.Failed[0].Error, link.ErrUnsupportedScheme))
				assert.Contains(t, report.Warnings[0], "line 1")

				proxies := 0
				for _, o := range doc.Outbounds {
					switch o["type"] {
					case "vmess", "vless", "trojan":
						proxies++
					}
				}
				assert.Equal(t, 1, proxies)
			},
		},
	}

	template := loadTemplate(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(nil, nil).Convert(tt.links, template)
			require.NoError(t, err)
			tt.validate(t, decodeDocument(t, result.Document), result.Report)
		})
	}
}

func TestConvertRewritesGroups(t *testing.T) {
	result, err := New(nil, nil).Convert(vlessNodeA, loadTemplate(t))
	require.NoError(t, err)
	doc := decodeDocument(t, result.Document)
	node := "🇸🇬 NodeA #1"

	tests := []struct {
		tag      string
		expected []string
	}{
		{"Internet", []string{"Best Latency", "Lock Region ID", node, "direct"}},
		{"Best Latency", []string{node, "direct"}},
		{"Lock Region ID", []string{node, "direct"}},
		{"Streaming", []string{"Internet", node, "direct", "bypass", "block", "dns-out"}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, members(t, doc.find(tt.tag))); diff != "" {
				t.Errorf("members mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// Template settings of kept groups survive the rewrite.
	assert.Equal(t, "1m", doc.find("Best Latency")["interval"])
	assert.Greater(t, result.Report.UpdatedSelectors, 0)
}

func TestConvertSinks(t *testing.T) {
	t.Run("template with all sinks", func(t *testing.T) {
		template := `{"outbounds": [
			{"type": "direct", "tag": "direct"},
			{"type": "direct", "tag": "bypass"},
			{"type": "block", "tag": "block"},
			{"type": "dns", "tag": "dns-out"}
		]}`
		out, err := Convert(vlessNodeA, template)
		require.NoError(t, err)
		doc := decodeDocument(t, []byte(out))
		for _, sink := range []string{"direct", "bypass", "block", "dns-out"} {
			assert.Equal(t, 1, doc.count(sink), sink)
		}
	})

	t.Run("template without sinks", func(t *testing.T) {
		out, err := Convert(vlessNodeA, `{"outbounds": []}`)
		require.NoError(t, err)
		doc := decodeDocument(t, []byte(out))
		for _, sink := range []string{"direct", "bypass", "block", "dns-out"} {
			assert.Equal(t, 1, doc.count(sink), sink)
		}
		tail := doc.Outbounds[len(doc.Outbounds)-4:]
		assert.Equal(t, "direct", tail[0]["tag"])
		assert.Equal(t, "dns-out", tail[3]["tag"])
	})

	t.Run("converting output again is stable", func(t *testing.T) {
		first, err := Convert(vlessNodeA, loadTemplate(t))
		require.NoError(t, err)
		second, err := Convert(vlessNodeA, first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestConvertWithoutLinks(t *testing.T) {
	template := `{"outbounds": [
		{"type": "vless", "tag": "kept", "server": "k.example.com"},
		{"type": "direct"}
	]}`

	result, err := New(nil, nil).Convert("\n  \n", template)
	require.NoError(t, err)

	assert.Empty(t, result.Report.Converted)
	assert.Contains(t, result.Report.Warnings, noLinksWarning)

	doc := decodeDocument(t, result.Document)
	expected := []any{
		"Internet", "Best Latency", "Lock Region ID",
		"WhatsApp", "GAMESMAX(ML/FF/AOV)", "Route Port Game", "Option ADs", "Option P0rn",
		"kept", nil,
		"direct", "bypass", "block", "dns-out",
	}
	var got []any
	for _, o := range doc.Outbounds {
		got = append(got, o["tag"])
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("outbounds mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertPreservesTemplate(t *testing.T) {
	template := loadTemplate(t)
	out, err := Convert(vmessScenarioA(), template)
	require.NoError(t, err)

	var before, after map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(template), &before))
	require.NoError(t, json.Unmarshal([]byte(out), &after))

	for key := range before {
		if key == "outbounds" {
			continue
		}
		assert.JSONEq(t, string(before[key]), string(after[key]), key)
	}

	last := -1
	for _, key := range []string{`"log"`, `"dns"`, `"inbounds"`, `"outbounds"`, `"route"`} {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}

	assert.True(t, strings.HasPrefix(out, "{\n  \"log\": {\n    \"level\""))
	assert.Contains(t, out, "🇺🇸")
}

func TestConvertTemplateErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{name: "invalid json", template: `{"outbounds": [`},
		{name: "missing outbounds", template: `{"log": {}}`},
		{name: "outbounds not an array", template: `{"outbounds": "direct"}`},
		{name: "not an object", template: `[]`},
		{name: "empty", template: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newRecordingMetrics()
			result, err := New(nil, metrics).Convert(vlessNodeA, tt.template)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrTemplateParse))

			var convErr *ConversionError
			require.True(t, errors.As(err, &convErr))
			assert.NotEmpty(t, convErr.Error())

			assert.Equal(t, 1, metrics.conversions)
			assert.Equal(t, 1, metrics.failed)
		})
	}
}

func TestConvertRecordsMetrics(t *testing.T) {
	metrics := newRecordingMetrics()
	links := strings.Join([]string{
		vmessScenarioA(),
		"ss://aes-256-gcm:pass@1.2.3.4:8388",
		"vless://missing-port@example.com",
		vlessNodeA,
	}, "\n")

	result, err := New(nil, metrics).Convert(links, loadTemplate(t))
	require.NoError(t, err)

	assert.Len(t, result.Report.Converted, 2)
	assert.Equal(t, []string{"🇺🇸 US - Node1 #1", "🇸🇬 NodeA #2"}, result.Report.Converted)
	assert.Equal(t, 1, metrics.conversions)
	assert.Equal(t, 0, metrics.failed)
	assert.Equal(t, 1, metrics.links["vmess/success"])
	assert.Equal(t, 1, metrics.links["vless/success"])
	assert.Equal(t, 1, metrics.links["vless/failure"])
	assert.Equal(t, 1, metrics.links["other/failure"])
	assert.Equal(t, 1, metrics.decodeErrors["unsupported_scheme"])
	assert.Equal(t, 1, metrics.decodeErrors["malformed_uri"])
}

func TestConvertConcurrent(t *testing.T) {
	template := loadTemplate(t)
	links := vmessScenarioA() + "\n" + vlessNodeA
	c := New(nil, nil)

	expected, err := Convert(links, template)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.Convert(links, template)
			if err == nil {
				results[i] = string(r.Document)
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, expected, r)
	}
}
