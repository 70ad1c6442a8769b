package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_ShadowingLookupIsBackward(t *testing.T) {
	tab := New()
	tab.Add(Symbol{Name: "x", Class: Global})
	tab.Add(Symbol{Name: "x", Class: Local, Offset: 8})

	found := tab.Find("x")
	assert.NotNil(t, found)
	assert.Equal(t, Local, found.Class)
	assert.Equal(t, 8, found.Offset)
}

func TestTable_SaveRestoreByLength(t *testing.T) {
	tab := New()
	tab.Add(Symbol{Name: "g", Class: Global})

	mark := tab.Len()
	tab.Add(Symbol{Name: "p", Class: Param, ParamIndex: 0})
	tab.Add(Symbol{Name: "l", Class: Local, Offset: 8})
	assert.NotNil(t, tab.Find("p"))

	tab.Truncate(mark)
	assert.Nil(t, tab.Find("p"))
	assert.Nil(t, tab.Find("l"))
	assert.NotNil(t, tab.Find("g"))
}

func TestTable_FindUndeclaredReturnsNil(t *testing.T) {
	tab := New()
	assert.Nil(t, tab.Find("missing"))
}
