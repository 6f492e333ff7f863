// Package rpc exposes word counting over Connect. Requests and responses
// are google.protobuf.Struct messages, so any Connect, gRPC or gRPC-Web
// client can call the service without generated stubs:
//
//	curl -H 'Content-Type: application/json' \
//	  -d '{"urls": ["https://example.com"], "top": 10}' \
//	  http://localhost:8080/wordcount.v1.WordCountService/Count
package rpc
