package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type JsonSchemaTestSuite struct {
	suite.Suite
}

func TestJsonSchemaSuite(t *testing.T) {
	suite.Run(t, new(JsonSchemaTestSuite))
}

func (suite *JsonSchemaTestSuite) TestToJSONSchema() {
	type TestConfig struct {
		URL     string `json:"url" jsonschema:"title=Hook URL,description=Trade collaborator endpoint"`
		Timeout int    `json:"timeout" jsonschema:"title=Timeout"`
	}

	schema, err := ToJSONSchema(TestConfig{})
	suite.Require().NoError(err)
	suite.NotEmpty(schema)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))
	suite.Equal("object", decoded["type"])

	props, ok := decoded["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(props, "url")
	suite.Contains(props, "timeout")
}
