package state

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"ucc/config"
)

func TestContextWithEnv(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now()}
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}
		for i := range 3 {
			env.RedirectStdLog()
			if env.restoreStdLog == nil {
				t.Errorf("Iteration %d: restoreStdLog not set", i)
			}
			env.RestoreStdLog()
		}
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
		env.RestoreStdLog()
	})
}

func TestLocalEnv_Compiler(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error: %v", err)
	}
	env := &LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t), start: time.Now()}

	c := env.Compiler()
	if c == nil {
		t.Fatal("Compiler() returned nil")
	}
	if env.Compiler() != c {
		t.Error("Compiler() must return the same instance")
	}

	res, err := c.Compile(context.Background(), "default", "a{}", nil)
	if err != nil || len(res.Sections) != 1 {
		t.Errorf("Compile() = %+v, %v", res, err)
	}
}

func TestLocalEnv_CompilerWithoutConfig(t *testing.T) {
	env := &LocalEnv{}
	res, err := env.Compiler().Compile(context.Background(), "uso", "a{}", nil)
	if err != nil || len(res.Sections) != 1 {
		t.Errorf("Compile() = %+v, %v", res, err)
	}
	if _, err := env.Compiler().Compile(context.Background(), "less", "a{}", nil); err == nil {
		t.Error("less without configured renderer must fail")
	}
}
