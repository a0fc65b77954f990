package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain", input: "新竹7314270806", expected: "新竹7314270806"},
		{name: "crlf", input: "a\r\nb\rc", expected: "a\nb\nc"},
		{name: "line separators", input: "a\u2028b\u2029c\u0085d", expected: "a\nb\nc\nd"},
		{name: "no-break spaces", input: "6.94\u00a0KG (1\u3000個包裹)\u202f", expected: "6.94 KG (1 個包裹) "},
		{name: "decomposed accent", input: "cafe\u0301", expected: "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"\r\n\r\n",
		"\r\r\n\n",
		"新竹7314270806\u00a0打包後重量: 6.94 KG",
		"a\u2028\r\nb\u3000\u3000c",
		"e\u0323\u0301 x y",
		"33.8 x 27 x 39.1 CM ，2才",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestIsTableFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "full header", input: "新竹包裹編號  包裹數  狀態  快遞  單號", expected: true},
		{name: "keywords spread over lines", input: "新竹\n包裹數\n狀態\n申通快遞", expected: true},
		{name: "missing courier", input: "新竹包裹編號  包裹數  狀態", expected: false},
		{name: "free-form section", input: "新竹7314270806 打包後重量: 6.94 KG (1 個包裹)\n申通快遞 773348737609079", expected: false},
		{name: "prose", input: "hello world", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTableFormat(tt.input))
		})
	}
}
