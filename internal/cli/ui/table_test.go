package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"SELECTOR", "NAME", "RETURNS"}, &TableOptions{NoColor: true})
	table.AddRow("0x84a15da1", "transfer", "TransferResult")
	table.AddRow("0xdb6375a8", "total_supply", "Balance")
	table.AddRow("0x0000002a", "ping")
	table.Render()

	want := "" +
		"SELECTOR    NAME          RETURNS\n" +
		"──────────  ────────────  ──────────────\n" +
		"0x84a15da1  transfer      TransferResult\n" +
		"0xdb6375a8  total_supply  Balance\n" +
		"0x0000002a  ping\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 3, table.Len())
}

func TestTable_MultibyteWidth(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, &TableOptions{NoColor: true})
	table.AddRow("→x", "1")
	table.Render()

	assert.Equal(t, "A   B\n──  ─\n→x  1\n", buf.String())
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, nil, nil)
	table.AddRow("x")
	table.Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("contract", "Erc20")
	kv.AddRow("language", "yaml")
	kv.AddRow("fingerprint", "ab12")
	kv.Render()

	want := "" +
		"contract:    Erc20\n" +
		"language:    yaml\n" +
		"fingerprint: ab12\n"
	assert.Equal(t, want, buf.String())
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	s := NewSection(&buf, "Events", true)
	s.AddLine("Transfer(from, to, value)")
	s.Render()
	assert.Equal(t, "Events\n  Transfer(from, to, value)\n\n", buf.String())

	buf.Reset()
	NewSection(&buf, "Empty", true).Render()
	assert.Empty(t, buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Erc20", true)
	assert.Equal(t, "Erc20\n─────\n", buf.String())
}
