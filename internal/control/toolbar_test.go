package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/rights"
)

const toolbarMarkup = `<toolbar name="editor" class="top">
	<control type="button" id="save" title="BTN_SAVE" tooltip="TIP_SAVE"/>
	<control type="link" href="/back" title="BTN_BACK"/>
	<control type="container" id="more">
		<control type="switcher" id="wide" state="1" title="BTN_WIDE"/>
		<control type="separator"/>
	</control>
	<control type="button" id="delete" ro_rights="3"/>
</toolbar>`

func TestToolbar_ParseMarkup(t *testing.T) {
	tb := NewToolbar("")
	tb.SetRights(rights.Edit)
	require.NoError(t, tb.ParseMarkup(toolbarMarkup))

	assert.Equal(t, "editor", tb.Name())
	assert.Equal(t, "top", tb.Properties().Value("class"))

	controls := tb.Controls()
	require.Len(t, controls, 4)
	assert.Equal(t, "editor_link_2", controls[1].ID())

	sep, ok := tb.Control("more_separator_2")
	require.True(t, ok)
	idx, err := sep.Index()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Same(t, tb, sep.Toolbar())

	del, ok := tb.Control("delete")
	require.True(t, ok)
	assert.Equal(t, rights.None, del.Mode())

	el := tb.Build()
	assert.Equal(t, "editor", el.SelectAttrValue("name", ""))
	built := el.SelectElements(NodeControl)
	require.Len(t, built, 3, "control without read access is omitted")
	assert.Equal(t, "2", built[0].SelectAttrValue("mode", ""))
	assert.Len(t, built[2].SelectElements(NodeControl), 2)
}

func TestToolbar_ParseMarkupErrors(t *testing.T) {
	assert.Equal(t, CodeNotToolbar, apperror.CodeOf(NewToolbar("x").ParseMarkup(`<toolbar name=></toolbar>`)))
	assert.Equal(t, CodeNotToolbar, apperror.CodeOf(NewToolbar("x").ParseMarkup(`<menu/>`)))
	assert.Equal(t, CodeNoType, apperror.CodeOf(NewToolbar("x").ParseMarkup(`<toolbar><control/></toolbar>`)))
}

func TestToolbar_AttachDetach(t *testing.T) {
	tb := NewToolbar("tb")
	a, b, c := NewButton("a"), NewButton("b"), NewLink("c")
	for _, ctl := range []Control{a, b, c} {
		require.NoError(t, tb.Attach(ctl))
	}
	assert.Equal(t, CodeDuplicateID, apperror.CodeOf(tb.Attach(NewButton("b"))))

	require.NoError(t, tb.Detach("b"))
	_, err := b.Index()
	assert.Equal(t, CodeNoIndex, apperror.CodeOf(err))
	assert.Nil(t, b.Toolbar())

	idx, err := c.Index()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	assert.Equal(t, CodeNoSuchControl, apperror.CodeOf(tb.Detach("b")))
}

func TestToolbar_AttachAdoptsContainerChildren(t *testing.T) {
	container := NewContainer("box")
	child := NewButton("inner")
	require.NoError(t, container.Attach(child))
	assert.Nil(t, child.Toolbar())

	tb := NewToolbar("tb")
	require.NoError(t, tb.Attach(container))
	assert.Same(t, tb, child.Toolbar())
}

func TestToolbar_AttachChecksTopLevelOnly(t *testing.T) {
	box := NewContainer("box")
	require.NoError(t, box.Attach(NewButton("save")))

	tb := NewToolbar("tb")
	require.NoError(t, tb.Attach(box))
	require.NoError(t, tb.Attach(NewButton("save")), "nested ids do not clash with top-level ids")
	assert.Len(t, tb.Controls(), 2)

	assert.Equal(t, CodeDuplicateID, apperror.CodeOf(tb.Attach(NewButton("box"))))
	assert.Equal(t, CodeDuplicateID, apperror.CodeOf(tb.Attach(NewLink("save"))))

	require.NoError(t, tb.Detach("save"))
	_, ok := tb.Control("save")
	assert.True(t, ok, "nested control is still reachable")
}

func TestToolbar_DisableEnableTranslate(t *testing.T) {
	tb := NewToolbar("")
	require.NoError(t, tb.ParseMarkup(toolbarMarkup))

	tb.DisableAll()
	wide, _ := tb.Control("wide")
	assert.True(t, wide.Disabled())
	save, _ := tb.Control("save")
	assert.True(t, save.Disabled())

	tb.EnableAll()
	assert.False(t, wide.Disabled())

	tb.Translate(upper)
	assert.Equal(t, "T:BTN_SAVE", save.Attr("title"))
	assert.Equal(t, "T:TIP_SAVE", save.Attr("tooltip"))
	assert.Equal(t, "T:BTN_WIDE", wide.Attr("title"))
}
