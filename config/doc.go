// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

// Package config 提供 GraphFlow 的配置加载能力。
//
// 配置来源按优先级从低到高依次为: 内置默认值、YAML 配置文件、
// 带前缀的环境变量。敏感信息（如 API Key）建议通过环境变量或
// .env 文件注入，不要写入 YAML。
package config
