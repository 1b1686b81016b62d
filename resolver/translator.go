package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arflix-cli/arflix/source"
	"github.com/samber/lo"
	"github.com/samber/mo"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString {
		return strings.TrimSpace(val.String())
	}
	return ""
}

func optString(table *lua.LTable, key string) mo.Option[string] {
	if s := getString(table, key); s != "" {
		return mo.Some(s)
	}
	return mo.None[string]()
}

// optInt accepts numbers and numeric strings; anything else is None.
func optInt(table *lua.LTable, key string) mo.Option[int64] {
	switch val := table.RawGetString(key).(type) {
	case lua.LNumber:
		return mo.Some(int64(val))
	case lua.LString:
		if n, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64); err == nil {
			return mo.Some(n)
		}
	}
	return mo.None[int64]()
}

func optBool(table *lua.LTable, key string) mo.Option[bool] {
	switch val := table.RawGetString(key).(type) {
	case lua.LBool:
		return mo.Some(bool(val))
	case lua.LString:
		if b, err := strconv.ParseBool(string(val)); err == nil {
			return mo.Some(b)
		}
	}
	return mo.None[bool]()
}

func narrow(o mo.Option[int64]) mo.Option[int] {
	if v, ok := o.Get(); ok {
		return mo.Some(int(v))
	}
	return mo.None[int]()
}

// candidateFromTable decodes one stream entry. Only url is required; title falls back to name, then url.
func candidateFromTable(table *lua.LTable, index int) (*source.Candidate, error) {
	url := getString(table, "url")
	if url == "" {
		return nil, fmt.Errorf("stream #%d: %w", index+1, source.ErrNoURL)
	}

	title, _ := lo.Coalesce(getString(table, "title"), getString(table, "name"), url)

	c := source.New(url, title)
	c.Kind = source.ParseKind(getString(table, "kind"))
	c.Quality = optString(table, "quality")
	c.Codec = optString(table, "codec")
	c.HDR = optBool(table, "hdr")
	c.SizeBytes = optInt(table, "size")
	c.Seeds = narrow(optInt(table, "seeds"))
	c.Peers = narrow(optInt(table, "peers"))
	c.Index = index

	if headers, ok := table.RawGetString("headers").(*lua.LTable); ok {
		c.Headers = make(map[string]string)
		headers.ForEach(func(k, v lua.LValue) {
			c.Headers[k.String()] = v.String()
		})
	}

	return c, nil
}

// candidatesFromTable decodes the array part of table in order.
func candidatesFromTable(table *lua.LTable) ([]*source.Candidate, []error) {
	var (
		candidates []*source.Candidate
		errs       []error
	)

	for i := 1; i <= table.Len(); i++ {
		entry, ok := table.RawGetInt(i).(*lua.LTable)
		if !ok {
			errs = append(errs, fmt.Errorf("stream #%d: expected table, got %s", i, table.RawGetInt(i).Type()))
			continue
		}

		c, err := candidateFromTable(entry, len(candidates))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, errs
}
