package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/mesa-hq/mesa-server/domain/tools"
	"github.com/mesa-hq/mesa-server/internal/config"
	"github.com/mesa-hq/mesa-server/pkg/logger"
)

// Turn is one prior message supplied as model context.
type Turn struct {
	Role    string // "user" or "ai"
	Content string
}

// Request is the input to one agent run.
type Request struct {
	System  string
	History []Turn
	Message string
}

// Engine drives the model loop for one request, pushing raw update frames
// through emit in arrival order. A non-nil error from emit aborts the run.
type Engine interface {
	Stream(ctx context.Context, req Request, emit func(UpdateFrame) error) error
}

const (
	agentNode = "agent"
	toolsNode = "tools"
)

// GeminiEngine runs the loop against Gemini with function calling. It
// alternates between streaming model output and invoking registry tools
// until the model stops calling tools or the step budget runs out.
type GeminiEngine struct {
	client   *genai.Client
	registry *tools.Registry
	llm      config.LLMConfig
	agent    config.AgentConfig
	log      *slog.Logger
}

func NewGeminiEngine(ctx context.Context, cfg *config.Config, registry *tools.Registry, log *slog.Logger) (*GeminiEngine, error) {
	if !cfg.LLM.IsEnabled() {
		return nil, fmt.Errorf("llm is not configured: set GCP_PROJECT_ID or GOOGLE_API_KEY")
	}

	clientCfg := &genai.ClientConfig{}
	if cfg.LLM.UseVertexAI() {
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = cfg.LLM.GCPProjectID
		clientCfg.Location = cfg.LLM.VertexAILocation
	} else {
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.LLM.GoogleAPIKey
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiEngine{
		client:   client,
		registry: registry,
		llm:      cfg.LLM,
		agent:    cfg.Agent,
		log:      log.With(logger.Scope("agent.engine")),
	}, nil
}

func (e *GeminiEngine) Stream(ctx context.Context, req Request, emit func(UpdateFrame) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.agent.StreamTimeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "ai" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       ptrFloat32(float32(e.llm.Temperature)),
		MaxOutputTokens:   int32(e.llm.MaxOutputTokens),
		Tools: []*genai.Tool{
			{FunctionDeclarations: e.registry.Declarations()},
		},
	}

	for step := 0; step < e.agent.MaxSteps; step++ {
		text, calls, err := e.generateStep(ctx, contents, genCfg)
		if err != nil {
			return fmt.Errorf("model step %d: %w", step, err)
		}

		if text != "" {
			if err := emit(UpdateFrame{Node: agentNode, Kind: FrameChunk, Content: text}); err != nil {
				return err
			}
		}

		if len(calls) == 0 {
			return nil
		}

		parts := make([]*genai.Part, 0, len(calls)+1)
		if text != "" {
			parts = append(parts, genai.NewPartFromText(text))
		}
		for _, call := range calls {
			parts = append(parts, genai.NewPartFromFunctionCall(call.Name, call.Args))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))

		for _, call := range calls {
			args, _ := json.Marshal(call.Args)
			if err := emit(UpdateFrame{Node: agentNode, Kind: FrameToolCall, Tool: call.Name, Content: string(args)}); err != nil {
				return err
			}

			e.log.Debug("invoking tool", "tool", call.Name)
			result := e.registry.Invoke(ctx, call.Name, call.Args)

			if err := emit(UpdateFrame{Node: toolsNode, Kind: FrameToolResult, Tool: call.Name, Content: result}); err != nil {
				return err
			}

			contents = append(contents, genai.NewContentFromParts(
				[]*genai.Part{genai.NewPartFromFunctionResponse(call.Name, responseMap(result))},
				genai.RoleUser,
			))
		}
	}

	e.log.Warn("agent loop hit step limit", "max_steps", e.agent.MaxSteps)
	return nil
}

// generateStep streams one model response, returning its text and any
// function calls it requested.
func (e *GeminiEngine) generateStep(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, []*genai.FunctionCall, error) {
	var text strings.Builder
	var calls []*genai.FunctionCall

	for resp, err := range e.client.Models.GenerateContentStream(ctx, e.llm.Model, contents, cfg) {
		if err != nil {
			return "", nil, err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
				if part.FunctionCall != nil {
					calls = append(calls, part.FunctionCall)
				}
			}
		}
	}

	return text.String(), calls, nil
}

// responseMap converts a tool's JSON envelope into the map shape the model
// expects as a function response.
func responseMap(result string) map[string]any {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		return map[string]any{"output": result}
	}
	return decoded
}

func ptrFloat32(v float32) *float32 {
	return &v
}
