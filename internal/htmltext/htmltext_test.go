package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "Senior Go Developer", want: "Senior Go Developer"},
		{name: "entities", in: "R&amp;D &lt;Lead&gt;", want: "R&D <Lead>"},
		{name: "paragraphs", in: "<p>Build services.</p><p>Join us</p>", want: "Build services. Join us"},
		{name: "inline", in: "<p>We <strong>ship</strong> daily</p>", want: "We ship daily"},
		{name: "line_break", in: "one<br>two", want: "one two"},
		{name: "script_dropped", in: "<p>ok</p><script>alert(1)</script>", want: "ok"},
		{name: "whitespace", in: "  a \n\t b  ", want: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToPlain(tt.in))
		})
	}
}

func TestEncodeEmails(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no address here", EncodeEmails("no address here"))
	assert.Equal(t, "Mail &#97;&#64;&#98;&#46;&#100;&#101;!", EncodeEmails("Mail a@b.de!"))
	assert.Equal(t, "a@b", EncodeEmails("a@b"))
}
