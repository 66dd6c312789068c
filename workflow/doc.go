// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

/*
Package workflow 提供基于共享状态的有向图工作流引擎。

# 概述

workflow 包实现了 GraphFlow 的核心：把一组独立的节点函数组合成有向图，
在一份按字段声明合并策略的共享状态上顺序执行。支持静态边、条件路由、
编译期整体校验以及可选的步数上限保护。

# 核心类型

  - Schema / Field   — 状态模式：字段名 + 语义类型 + Reducer
  - State            — 字段名到值的映射，节点返回部分更新
  - Reducer          — 字段合并策略（Overwrite / Append）
  - GraphBuilder     — 注册节点与边，Compile 做整体校验
  - CompiledGraph    — 不可变可执行图，可并发复用
  - Trace            — 单次运行的节点访问记录

# 执行模型

单次运行内节点严格顺序执行：解析后继（静态边或路由器）→ 调用节点 →
按字段 Reducer 合并部分更新 → 前进，直到终止标记。循环不被禁止，
调用方可用 WithStepLimit 防止不终止的图。多次独立运行可并发进行，
引擎层无共享可变状态。

# 错误分类

  - GraphDefinitionError   — 编译期结构缺陷，一次汇总全部违规
  - RoutingError           — 路由器返回了未映射的标签
  - NodeExecutionError     — 节点调用失败，携带节点名与当时状态
  - StepLimitExceededError — 超过调用方设定的步数上限
*/
package workflow
