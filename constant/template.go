// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// StreamsFn is the global function every Lua resolver script must define.
const StreamsFn = "Streams"

// ResolverTemplate is a text/template used by "arflix resolvers gen" to scaffold a new Lua resolver.
const ResolverTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias stream { url: string, title: string, kind: string|nil, quality: string|nil, codec: string|nil, hdr: boolean|nil, size: number|nil, seeds: number|nil, peers: number|nil, headers: table|nil }


----- IMPORTS -----
--- END IMPORTS ---



----- MAIN -----

--- Resolves playable stream candidates for a query.
-- @param query string Title or identifier to resolve
-- @return stream[] Table of stream candidates
function {{ .StreamsFn }}(query)
	return {}
end

--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`
