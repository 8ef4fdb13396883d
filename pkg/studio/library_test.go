package studio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLibrary() *Library {
	return NewLibrary(map[string][]NodeData{
		"Data Sources": {smartDBTemplate()},
		"AI":           {agentTemplate()},
		"IO":           {outputTemplate()},
	})
}

// TestLibrary_Categories verifies sorted category order.
func TestLibrary_Categories(t *testing.T) {
	l := testLibrary()
	assert.Equal(t, []string{"AI", "Data Sources", "IO"}, l.Categories())
	assert.Equal(t, 3, l.Len())
}

// TestLibrary_Find tests template lookup by id.
func TestLibrary_Find(t *testing.T) {
	l := testLibrary()

	tpl, ok := l.Find("smartDB")
	require.True(t, ok)
	assert.Equal(t, "SmartDB", tpl.Label)

	_, ok = l.Find("ghost")
	assert.False(t, ok)
}

// TestLibrary_Templates returns the templates of one category.
func TestLibrary_Templates(t *testing.T) {
	l := testLibrary()
	tpls := l.Templates("AI")
	require.Len(t, tpls, 1)
	assert.Equal(t, "agent", tpls[0].TemplateID)
	assert.Empty(t, l.Templates("ghost"))
}

// TestLibrary_Search verifies case-insensitive label matching and that
// non-matching categories disappear from the result.
func TestLibrary_Search(t *testing.T) {
	l := testLibrary()

	hits := l.Search("smart")
	require.Len(t, hits, 1)
	require.Len(t, hits["Data Sources"], 1)
	assert.Equal(t, "smartDB", hits["Data Sources"][0].TemplateID)

	assert.Empty(t, l.Search("zzz"))
}
