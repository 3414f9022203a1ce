package codegen

const mainTemplate = `// Code generated by dynaspec. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)

// TableName is the DynamoDB table the access patterns read from.
const TableName = {{quote .TableName}}

// QueryAPI is the part of *dynamodb.Client used by query access patterns.
type QueryAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// GetItemAPI is the part of *dynamodb.Client used by get access patterns.
type GetItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}
{{range $p := .Patterns}}
// {{$p.TypeName}} is an item returned by {{$p.FuncName}}.
type {{$p.TypeName}} struct {
{{- range $p.Fields}}
	{{.GoName}} {{.GoType}} ` + "`" + `dynamodbav:"{{.Attribute}},omitempty"` + "`" + `
{{- end}}
}
{{if $p.GetItem}}
// {{$p.FuncName}} implements the access pattern {{quote $p.Title}}.
// It returns nil when no item matches.
func {{$p.FuncName}}(ctx context.Context, client GetItemAPI, {{params $p}}) (*{{$p.TypeName}}, error) {
	key, err := attributevalue.MarshalMap(map[string]any{
		{{quote $p.PartitionAttr}}: {{$p.PartitionArg}},
		{{- if $p.SortAttr}}
		{{quote $p.SortAttr}}: {{$p.SortArg}},
		{{- end}}
	})
	if err != nil {
		return nil, fmt.Errorf("marshal {{$p.FuncName}} key: %w", err)
	}
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("{{$p.FuncName}}: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var item {{$p.TypeName}}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal {{$p.FuncName}} item: %w", err)
	}
	return &item, nil
}
{{else}}
// {{$p.FuncName}} implements the access pattern {{quote $p.Title}}.
{{- if $p.Single}}
// It returns nil when no item matches.
{{- end}}
func {{$p.FuncName}}(ctx context.Context, client QueryAPI, {{params $p}}) ({{if $p.Single}}*{{$p.TypeName}}{{else}}[]{{$p.TypeName}}{{end}}, error) {
	keyCond := expression.Key({{quote $p.PartitionAttr}}).Equal(expression.Value({{$p.PartitionArg}}))
	{{- if $p.SortCond}}
	keyCond = keyCond.And({{$p.SortCond}})
	{{- end}}
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	{{- if $p.Filter}}
	builder = builder.WithFilter({{$p.Filter}})
	{{- end}}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build {{$p.FuncName}} expression: %w", err)
	}
	input := &dynamodb.QueryInput{
		TableName: aws.String(TableName),
		{{- if $p.Index}}
		IndexName: aws.String({{quote $p.Index}}),
		{{- end}}
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		{{- if $p.Desc}}
		ScanIndexForward: aws.Bool(false),
		{{- end}}
		{{- if $p.Limit}}
		Limit: aws.Int32({{$p.Limit}}),
		{{- end}}
	}
	var items []{{$p.TypeName}}
	for {
		out, err := client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("{{$p.FuncName}}: %w", err)
		}
		var page []{{$p.TypeName}}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal {{$p.FuncName}} items: %w", err)
		}
		items = append(items, page...)
		{{- if $p.Limit}}
		if len(items) >= {{$p.Limit}} {
			items = items[:{{$p.Limit}}]
			break
		}
		{{- end}}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	{{- if $p.Single}}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
	{{- else}}
	return items, nil
	{{- end}}
}
{{end}}
{{- end}}
`
