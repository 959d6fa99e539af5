package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/document"
)

func objectNode(t *testing.T, src string) *document.Node {
	t.Helper()
	node, err := document.Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, document.Object, node.Kind)
	return node
}

func TestScope_CloseFlagsLeftovers(t *testing.T) {
	s := newScope(objectNode(t, "a: 1\nb: 2\nc: 3\n"))

	_, _, _, err := s.optionalNumber("a")
	require.NoError(t, err)
	_, _, _, err = s.optionalNumber("c")
	require.NoError(t, err)

	err = s.close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unrecognized field "b"`)
}

func TestScope_CloseReportsFirstInFileOrder(t *testing.T) {
	s := newScope(objectNode(t, "z: 1\na: 2\n"))

	err := s.close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unrecognized field "z"`)
}

func TestScope_AbsentLookupStillConsumes(t *testing.T) {
	s := newScope(objectNode(t, "a: 1\n"))

	_, ok := s.any("missing")
	assert.False(t, ok)
	_, _, _, err := s.optionalNumber("a")
	require.NoError(t, err)
	assert.NoError(t, s.close())
}

func TestScope_TypeMismatchNamesBothKinds(t *testing.T) {
	s := newScope(objectNode(t, "a: [1]\n"))

	_, _, _, err := s.optionalString("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "a" must be a string, got array`)
}

func TestScope_RequiredMissing(t *testing.T) {
	s := newScope(objectNode(t, "a: 1\n"))

	_, _, err := s.requiredString("name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required field "name"`)
}

func TestScope_NumberAcceptsIntAndFloat(t *testing.T) {
	s := newScope(objectNode(t, "i: 4\nf: 0.5\n"))

	i, _, ok, err := s.optionalNumber("i")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.0, i)

	f, _, ok, err := s.optionalNumber("f")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.5, f)
	assert.NoError(t, s.close())
}

func TestScope_NumberRejectsNonFinite(t *testing.T) {
	for _, src := range []string{"v: .inf\n", "v: -.inf\n", "v: .nan\n"} {
		s := newScope(objectNode(t, src))
		_, _, _, err := s.optionalNumber("v")
		require.Error(t, err, "source %q", src)
		assert.Contains(t, err.Error(), `field "v" must be a finite number`)
	}
}

func TestRegistry_RequireCitesName(t *testing.T) {
	r := newRegistry("timer")
	r.add("tick")

	assert.NoError(t, r.require("tick", document.Position{}))

	err := r.require("tock", document.Position{Line: 4, Column: 9})
	require.Error(t, err)
	assert.Equal(t, `4:9: unknown timer "tock"`, err.Error())
}

func TestRegistry_DuplicateAddIsInternal(t *testing.T) {
	r := newRegistry("state")
	r.add("A")

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered, "duplicate add must panic")
		msg, ok := recovered.(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(msg, "compiler: internal error:"), "got %q", msg)
		assert.Contains(t, msg, `duplicate state "A"`)
	}()
	r.add("A")
}
