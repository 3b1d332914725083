package querysrc

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/query"
	"github.com/roach88/filtertree/internal/testutil"
)

func peopleQuery() *query.Group {
	return query.NewGroup(query.And,
		query.NewCondition("age", operator.GreaterOrEqual, 18),
		query.NewGroup(query.Or,
			query.NewCondition("name", operator.Contains, "Ann"),
			query.NewCondition("address.city", operator.Equal, "Oslo"),
		),
		query.NewCondition("status", operator.InList, []any{"active", "pending"}),
		query.NewCondition("joined", operator.Between, []any{"2020-01-01", "2023-12-31"}),
		query.NewCondition("active", operator.Equal, "1"),
		query.NewCustomCondition("age", "${age} > 1"),
	)
}

func TestCompile_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, target := range Targets {
		t.Run(string(target), func(t *testing.T) {
			src, err := Compile(peopleQuery(), testutil.PeopleFields(), target)
			require.NoError(t, err)
			g.Assert(t, "people_"+string(target), []byte(src))
		})
	}
}

// condition compiles c alone and drops any helper definitions ahead of the
// predicate function.
func condition(t *testing.T, target Target, c *query.Condition) string {
	t.Helper()
	src, err := Compile(query.NewGroup(query.And, c), testutil.PeopleFields(), target)
	require.NoError(t, err)
	header := "function filter(item)"
	if target == TargetPython {
		header = "def filter(item)"
	}
	i := strings.Index(src, header)
	require.GreaterOrEqual(t, i, 0, src)
	return src[i:]
}

func TestCompile_JavaScriptConditions(t *testing.T) {
	tests := []struct {
		name string
		cond *query.Condition
		want string
	}{
		{"equal text", query.NewCondition("name", operator.Equal, `say "hi"`), `item.name === "say \"hi\""`},
		{"equal bool", query.NewCondition("active", operator.Equal, "1"), `(item.active != null && _bool(item.active) === true)`},
		{"equal null", query.NewCondition("name", operator.Equal, nil), `false`},
		{"not equal", query.NewCondition("age", operator.NotEqual, "42"), `(item.age != null && _num(item.age) !== 42)`},
		{"not equal null", query.NewCondition("name", operator.NotEqual, nil), `item.name != null`},
		{"less", query.NewCondition("age", operator.LessThan, 2.5), `(item.age != null && _num(item.age) < 2.5)`},
		{"date", query.NewCondition("joined", operator.LessOrEqual, "1970-01-02"), `(item.joined != null && new Date(item.joined).getTime() <= 86400000)`},
		{"not contains", query.NewCondition("name", operator.NotContains, "X"), `(item.name != null && !String(item.name).toLowerCase().includes("x"))`},
		{"starts with", query.NewCondition("name", operator.StartsWith, "A"), `(item.name != null && String(item.name).toLowerCase().startsWith("a"))`},
		{"not ends with", query.NewCondition("name", operator.NotEndsWith, "z"), `(item.name != null && !String(item.name).toLowerCase().endsWith("z"))`},
		{"is null", query.NewCondition("email", operator.IsNull, nil), `item.email == null`},
		{"not null", query.NewCondition("email", operator.NotNull, nil), `item.email != null`},
		{"is empty", query.NewCondition("email", operator.IsEmpty, nil), `(item.email == null || item.email === "")`},
		{"not empty", query.NewCondition("email", operator.NotEmpty, nil), `(item.email != null && item.email !== "")`},
		{"not between", query.NewCondition("age", operator.NotBetween, []int{1, 2}), `(item.age != null && !(_num(item.age) >= 1 && _num(item.age) <= 2))`},
		{"malformed range", query.NewCondition("age", operator.Between, 3), `false /* malformed range operand */`},
		{"not in list", query.NewCondition("age", operator.NotInList, []any{"1", 2}), `(item.age != null && ![1, 2].includes(_num(item.age)))`},
		{"malformed list", query.NewCondition("age", operator.InList, 3), `false /* malformed list operand */`},
		{"unknown operator", query.NewCondition("age", "*/ evil", 3), `true /* unsupported operator: ???evil */`},
		{"odd path", query.NewCondition("meta.first-name", operator.IsNull, nil), `item.meta?.["first-name"] == null`},
		{"odd root segment", query.NewCondition("first name", operator.IsNull, nil), `item["first name"] == null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := "function filter(item) {\n  return " + tt.want + ";\n}\n"
			assert.Equal(t, want, condition(t, TargetJavaScript, tt.cond))
		})
	}
}

func TestCompile_PythonConditions(t *testing.T) {
	tests := []struct {
		name string
		cond *query.Condition
		want string
	}{
		{"equal text", query.NewCondition("name", operator.Equal, "Bo"), `item.get("name") == "Bo"`},
		{"equal bool", query.NewCondition("active", operator.Equal, false), `(item.get("active") is not None and _bool(item.get("active")) == False)`},
		{"not equal", query.NewCondition("name", operator.NotEqual, "Bo"), `(item.get("name") is not None and item.get("name") != "Bo")`},
		{"greater", query.NewCondition("age", operator.GreaterThan, 18), `(item.get("age") is not None and _num(item.get("age")) > 18)`},
		{"contains", query.NewCondition("name", operator.Contains, "Ann"), `(item.get("name") is not None and "ann" in str(item.get("name")).lower())`},
		{"not starts with", query.NewCondition("name", operator.NotStartsWith, "A"), `(item.get("name") is not None and not str(item.get("name")).lower().startswith("a"))`},
		{"ends with", query.NewCondition("name", operator.EndsWith, "n"), `(item.get("name") is not None and str(item.get("name")).lower().endswith("n"))`},
		{"is null", query.NewCondition("email", operator.IsNull, nil), `item.get("email") is None`},
		{"is empty", query.NewCondition("email", operator.IsEmpty, nil), `item.get("email") in (None, "")`},
		{"not empty", query.NewCondition("email", operator.NotEmpty, nil), `item.get("email") not in (None, "")`},
		{"in list", query.NewCondition("status", operator.InList, []string{"a"}), `(item.get("status") is not None and item.get("status") in ["a"])`},
		{"not between", query.NewCondition("age", operator.NotBetween, []any{1, 2}), `(item.get("age") is not None and not (1 <= _num(item.get("age")) <= 2))`},
		{"nested path", query.NewCondition("a.b.c", operator.NotNull, nil), `((item.get("a") or {}).get("b") or {}).get("c") is not None`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := "def filter(item):\n    return " + tt.want + "\n"
			assert.Equal(t, want, condition(t, TargetPython, tt.cond))
		})
	}
}

func TestCompile_Helpers(t *testing.T) {
	fields := testutil.PeopleFields()
	age := query.NewGroup(query.And, query.NewCondition("age", operator.GreaterOrEqual, 18))
	active := query.NewGroup(query.And, query.NewCondition("active", operator.Equal, true))

	js, err := Compile(age, fields, TargetJavaScript)
	require.NoError(t, err)
	assert.Equal(t, "function _num(v) {\n"+
		"  if (typeof v === \"string\" && /[xXbBoO_]/.test(v)) return 0;\n"+
		"  const n = Number(v);\n"+
		"  return Number.isFinite(n) ? n : 0;\n"+
		"}\n\n"+
		"function filter(item) {\n  return (item.age != null && _num(item.age) >= 18);\n}\n", js)

	js, err = Compile(active, fields, TargetJavaScript)
	require.NoError(t, err)
	assert.Equal(t, "function _bool(v) {\n"+
		"  if (typeof v === \"string\") return [\"true\", \"1\"].includes(v.trim().toLowerCase());\n"+
		"  if (typeof v === \"number\") return Number.isFinite(v) && v !== 0;\n"+
		"  return v === true;\n"+
		"}\n\n"+
		"function filter(item) {\n  return (item.active != null && _bool(item.active) === true);\n}\n", js)

	py, err := Compile(age, fields, TargetPython)
	require.NoError(t, err)
	assert.Equal(t, "def _num(v):\n"+
		"    if isinstance(v, bool):\n"+
		"        return int(v)\n"+
		"    if isinstance(v, (int, float)):\n"+
		"        f = v\n"+
		"    else:\n"+
		"        s = str(v).strip()\n"+
		"        try:\n"+
		"            f = float(s) if \"_\" not in s else None\n"+
		"        except ValueError:\n"+
		"            f = None\n"+
		"    return f if f is not None and f - f == 0 else 0\n"+
		"\n\n"+
		"def filter(item):\n    return (item.get(\"age\") is not None and _num(item.get(\"age\")) >= 18)\n", py)

	py, err = Compile(active, fields, TargetPython)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(py, "def _bool(v):\n"), py)
	assert.Contains(t, py, "        return v.strip().lower() in (\"true\", \"1\")\n")
	assert.True(t, strings.HasSuffix(py, "return (item.get(\"active\") is not None and _bool(item.get(\"active\")) == True)\n"), py)

	// Operators that never coerce emit no helpers.
	for _, target := range Targets {
		src, err := Compile(query.NewGroup(query.And,
			query.NewCondition("age", operator.IsNull, nil),
			query.NewCondition("active", operator.NotEmpty, nil),
		), fields, target)
		require.NoError(t, err)
		assert.NotContains(t, src, "_num")
		assert.NotContains(t, src, "_bool")
	}
}

func TestCompile_Empty(t *testing.T) {
	js, err := Compile(query.NewRoot(), nil, TargetJavaScript)
	require.NoError(t, err)
	assert.Equal(t, "function filter(item) {\n  return true;\n}\n", js)

	py, err := Compile(nil, nil, TargetPython)
	require.NoError(t, err)
	assert.Equal(t, "def filter(item):\n    return True\n", py)
}

func TestCompile_Options(t *testing.T) {
	root := query.NewGroup(query.Or,
		query.NewCondition("a", operator.IsNull, nil),
		query.NewCondition("b", operator.IsNull, nil),
	)

	src, err := Compile(root, nil, TargetPython, WithIndent(2), WithFunctionName("keep"))
	require.NoError(t, err)
	assert.Equal(t, "def keep(item):\n  return (\n    item.get(\"a\") is None\n    or item.get(\"b\") is None\n  )\n", src)
}

func TestCompile_UnknownTarget(t *testing.T) {
	_, err := Compile(query.NewRoot(), nil, Target("cobol"))
	assert.Error(t, err)
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]Target{
		"js": TargetJavaScript, "JavaScript": TargetJavaScript,
		"py": TargetPython, " python ": TargetPython,
	} {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseTarget("ruby")
	assert.Error(t, err)
}
