package table

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/acksell/dynaspec/spec"
)

// CreateTableInput builds an on-demand CreateTable request.
func (t TableDefinition) CreateTableInput() *dynamodb.CreateTableInput {
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(t.Name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema:   keySchema(t.KeyDefinitions),
	}
	for _, def := range t.AttributeDefinitions() {
		in.AttributeDefinitions = append(in.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(def.Name),
			AttributeType: types.ScalarAttributeType(def.Kind),
		})
	}
	for _, gsi := range t.GSIs {
		in.GlobalSecondaryIndexes = append(in.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(gsi.Name),
			KeySchema:  keySchema(gsi.KeyDefinitions),
			Projection: projection(gsi),
		})
	}
	for _, lsi := range t.LSIs {
		in.LocalSecondaryIndexes = append(in.LocalSecondaryIndexes, types.LocalSecondaryIndex{
			IndexName:  aws.String(lsi.Name),
			KeySchema:  keySchema(lsi.KeyDefinitions),
			Projection: projection(lsi),
		})
	}
	return in
}

func keySchema(k PrimaryKeyDefinition) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{{
		AttributeName: aws.String(k.PartitionKey.Name),
		KeyType:       types.KeyTypeHash,
	}}
	if k.HasSortKey() {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(k.SortKey.Name),
			KeyType:       types.KeyTypeRange,
		})
	}
	return ks
}

func projection(idx IndexDefinition) *types.Projection {
	p := &types.Projection{ProjectionType: projectionType(idx.Projection)}
	if idx.Projection == spec.ProjectionInclude {
		p.NonKeyAttributes = idx.NonKeyAttributes
	}
	return p
}

func projectionType(p spec.ProjectionType) types.ProjectionType {
	switch p {
	case spec.ProjectionKeysOnly:
		return types.ProjectionTypeKeysOnly
	case spec.ProjectionInclude:
		return types.ProjectionTypeInclude
	default:
		return types.ProjectionTypeAll
	}
}

// CLIInput is the CreateTable request in the shape accepted by
// `aws dynamodb create-table --cli-input-json`.
type CLIInput struct {
	TableName              string                `json:"TableName"`
	AttributeDefinitions   []CLIAttribute        `json:"AttributeDefinitions"`
	KeySchema              []CLIKeySchemaElement `json:"KeySchema"`
	GlobalSecondaryIndexes []CLIIndex            `json:"GlobalSecondaryIndexes,omitempty"`
	LocalSecondaryIndexes  []CLIIndex            `json:"LocalSecondaryIndexes,omitempty"`
	BillingMode            string                `json:"BillingMode"`
}

type CLIAttribute struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

type CLIKeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type CLIIndex struct {
	IndexName  string                `json:"IndexName"`
	KeySchema  []CLIKeySchemaElement `json:"KeySchema"`
	Projection CLIProjection         `json:"Projection"`
}

type CLIProjection struct {
	ProjectionType   string   `json:"ProjectionType"`
	NonKeyAttributes []string `json:"NonKeyAttributes,omitempty"`
}

// CLIInput converts the SDK request so both shapes always agree.
func (t TableDefinition) CLIInput() CLIInput {
	in := t.CreateTableInput()
	out := CLIInput{
		TableName:   aws.ToString(in.TableName),
		KeySchema:   cliKeySchema(in.KeySchema),
		BillingMode: string(in.BillingMode),
	}
	for _, ad := range in.AttributeDefinitions {
		out.AttributeDefinitions = append(out.AttributeDefinitions, CLIAttribute{
			AttributeName: aws.ToString(ad.AttributeName),
			AttributeType: string(ad.AttributeType),
		})
	}
	for _, gsi := range in.GlobalSecondaryIndexes {
		out.GlobalSecondaryIndexes = append(out.GlobalSecondaryIndexes, cliIndex(aws.ToString(gsi.IndexName), gsi.KeySchema, gsi.Projection))
	}
	for _, lsi := range in.LocalSecondaryIndexes {
		out.LocalSecondaryIndexes = append(out.LocalSecondaryIndexes, cliIndex(aws.ToString(lsi.IndexName), lsi.KeySchema, lsi.Projection))
	}
	return out
}

func cliIndex(name string, ks []types.KeySchemaElement, p *types.Projection) CLIIndex {
	return CLIIndex{
		IndexName: name,
		KeySchema: cliKeySchema(ks),
		Projection: CLIProjection{
			ProjectionType:   strings.ToUpper(string(p.ProjectionType)),
			NonKeyAttributes: p.NonKeyAttributes,
		},
	}
}

func cliKeySchema(ks []types.KeySchemaElement) []CLIKeySchemaElement {
	out := make([]CLIKeySchemaElement, len(ks))
	for i, k := range ks {
		out[i] = CLIKeySchemaElement{
			AttributeName: aws.ToString(k.AttributeName),
			KeyType:       string(k.KeyType),
		}
	}
	return out
}
