package observability

import "go.opentelemetry.io/otel/attribute"

func nodeAttr(node string) attribute.KeyValue {
	return attribute.String("node.name", node)
}

func classAttr(class string) attribute.KeyValue {
	return attribute.String("node.class", class)
}
