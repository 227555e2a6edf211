package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	cases := []struct{ in, want string }{
		{`Launch party <script>alert(1)</script>`, `Launch party`},
		{`<span onmouseover="steal()">Board games</span>`, `Board games`},
		{`<h1>Jazz</h1> at <em>the pier</em>`, `Jazz at the pier`},
		{`Tom & Jerry's 2 < 3 meetup`, `Tom & Jerry's 2 < 3 meetup`},
		{"\n\tRoom 4B  ", `Room 4B`},
		{`See you there!`, `See you there!`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Text(c.in), c.in)
	}
}

func TestHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{`<p>Doors open at 7<script>x()</script></p>`, `<p>Doors open at 7</p>`},
		{`<ul><li><strong>Bring</strong> snacks</li></ul>`, `<ul><li><strong>Bring</strong> snacks</li></ul>`},
		{`<a href="https://example.org/map">Map</a>`, `<a href="https://example.org/map" rel="nofollow">Map</a>`},
		{`<a href="javascript:go()">Tickets</a>`, `Tickets`},
		{`<p style="color:red" onclick="x()">Free</p>`, `<p>Free</p>`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTML(c.in), c.in)
	}
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))

	blank := "  <br> "
	assert.Nil(t, OptionalText(&blank))

	venue := "<b>Parque Central</b>"
	got := OptionalText(&venue)
	require.NotNil(t, got)
	assert.Equal(t, "Parque Central", *got)
}

func TestOptionalHTML(t *testing.T) {
	assert.Nil(t, OptionalHTML(nil))

	onlyScript := "<script>x()</script>"
	assert.Nil(t, OptionalHTML(&onlyScript))

	desc := "<p>Bring water</p><script>x()</script>"
	got := OptionalHTML(&desc)
	require.NotNil(t, got)
	assert.Equal(t, "<p>Bring water</p>", *got)
}

func BenchmarkText(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Text("Concert at <b>The Venue</b>")
	}
}
