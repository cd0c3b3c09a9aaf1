// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the text-embedding abstraction used by the export
// pipeline and the query tool.
//
// The Embedder interface decouples the pipeline from any particular
// embedding provider. Two implementation sub-packages exist:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test double, no network
//
// Production constructors (openai.NewEmbedder) return the ai.Embedder
// INTERFACE to enforce abstraction; mock constructors return CONCRETE types
// so tests can inject behavior and assert call counts.
package ai
