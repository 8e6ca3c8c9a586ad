package http

import "go.opentelemetry.io/otel/attribute"

func attributeString(k, v string) attribute.KeyValue { return attribute.String(k, v) }

func attributeInt(k string, v int) attribute.KeyValue { return attribute.Int(k, v) }
