package resolver

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

type compiled struct {
	modTime time.Time
	proto   *lua.FunctionProto
}

// protos caches compiled scripts by path. An entry is reused while the file's modification time is unchanged.
var protos sync.Map

// Load compiles and runs the script at path and checks that it defines the Streams function.
func Load(path string) (*Resolver, error) {
	proto, err := compile(path)
	if err != nil {
		return nil, err
	}

	state := lua.NewState()
	libs.Preload(state)
	registerHTTP(state)

	state.Push(state.NewFunctionFromProto(proto))
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)
	if state.GetGlobal(constant.StreamsFn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("function %s is required but not defined in %s", constant.StreamsFn, name)
	}

	return &Resolver{
		name:  name,
		path:  path,
		state: state,
	}, nil
}

func compile(path string) (*lua.FunctionProto, error) {
	info, err := filesystem.API().Stat(path)
	if err != nil {
		return nil, err
	}

	if cached, ok := protos.Load(path); ok {
		c := cached.(compiled)
		if c.modTime.Equal(info.ModTime()) {
			return c.proto, nil
		}
	}

	contents, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, err
	}

	chunk, err := parse.Parse(bytes.NewReader(contents), path)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	protos.Store(path, compiled{modTime: info.ModTime(), proto: proto})
	return proto, nil
}
