package graphql

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Payload schemas describe the "data" member of each operation's response.
// Anything that does not match is rejected before it reaches the cache.

const definitions = `
"definitions": {
  "user": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": ["string", "null"]}
    }
  },
  "vote": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "user": {"oneOf": [{"type": "null"}, {"$ref": "#/definitions/user"}]}
    }
  },
  "votes": {
    "type": "array",
    "items": {"$ref": "#/definitions/vote"}
  },
  "link": {
    "type": "object",
    "required": ["id", "createdAt", "url", "description"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "createdAt": {"type": "string", "minLength": 1},
      "url": {"type": "string"},
      "description": {"type": "string"},
      "postedBy": {"oneOf": [{"type": "null"}, {"$ref": "#/definitions/user"}]},
      "votes": {"oneOf": [{"type": "null"}, {"$ref": "#/definitions/votes"}]}
    }
  }
}`

const feedSchemaDoc = `{
  "type": "object",
  "required": ["feed"],
  "properties": {
    "feed": {
      "type": "object",
      "required": ["links", "count"],
      "properties": {
        "links": {"type": "array", "items": {"$ref": "#/definitions/link"}},
        "count": {"type": "integer", "minimum": 0}
      }
    }
  },` + definitions + `}`

const searchSchemaDoc = `{
  "type": "object",
  "required": ["feed"],
  "properties": {
    "feed": {
      "type": "object",
      "required": ["links"],
      "properties": {
        "links": {"type": "array", "items": {"$ref": "#/definitions/link"}}
      }
    }
  },` + definitions + `}`

const voteSchemaDoc = `{
  "type": "object",
  "required": ["vote"],
  "properties": {
    "vote": {
      "type": "object",
      "required": ["link"],
      "properties": {
        "id": {"type": "string"},
        "link": {
          "type": "object",
          "required": ["votes"],
          "properties": {"votes": {"$ref": "#/definitions/votes"}}
        }
      }
    }
  },` + definitions + `}`

const postSchemaDoc = `{
  "type": "object",
  "required": ["post"],
  "properties": {
    "post": {
      "type": "object",
      "required": ["id", "url", "description"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "url": {"type": "string"},
        "description": {"type": "string"}
      }
    }
  }
}`

const authSchemaDoc = `{
  "type": "object",
  "properties": {
    "login": {"$ref": "#/definitions/auth"},
    "signup": {"$ref": "#/definitions/auth"}
  },
  "definitions": {
    "auth": {
      "type": "object",
      "required": ["token"],
      "properties": {"token": {"type": "string", "minLength": 1}}
    }
  }
}`

const newLinkSchemaDoc = `{
  "type": "object",
  "required": ["newLink"],
  "properties": {
    "newLink": {
      "type": "object",
      "required": ["node"],
      "properties": {"node": {"$ref": "#/definitions/link"}}
    }
  },` + definitions + `}`

const newVoteSchemaDoc = `{
  "type": "object",
  "required": ["newVote"],
  "properties": {
    "newVote": {
      "type": "object",
      "required": ["node"],
      "properties": {
        "node": {
          "type": "object",
          "required": ["link"],
          "properties": {
            "id": {"type": "string"},
            "link": {"$ref": "#/definitions/link"}
          }
        }
      }
    }
  },` + definitions + `}`

var (
	feedSchema    = mustSchema("feed", feedSchemaDoc)
	searchSchema  = mustSchema("search", searchSchemaDoc)
	voteSchema    = mustSchema("vote", voteSchemaDoc)
	postSchema    = mustSchema("post", postSchemaDoc)
	authSchema    = mustSchema("auth", authSchemaDoc)
	newLinkSchema = mustSchema("newLink", newLinkSchemaDoc)
	newVoteSchema = mustSchema("newVote", newVoteSchemaDoc)
)

func mustSchema(name, doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid %s payload schema: %v", name, err))
	}
	return schema
}
