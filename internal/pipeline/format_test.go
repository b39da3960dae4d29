// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"testing"

	"github.com/buildtest/buildtest/internal/runtime"
)

func TestFormatInvocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ec   func() *runtime.ExecutionContext
		want string
	}{
		{
			name: "plain arguments",
			ec: func() *runtime.ExecutionContext {
				return runtime.NewExecutionContext(context.Background(), "make", "-C", "/src/build", "-j12")
			},
			want: "make -C /src/build -j12",
		},
		{
			name: "glob filter is quoted",
			ec: func() *runtime.ExecutionContext {
				return runtime.NewExecutionContext(context.Background(), "/src/build/tests/tests", "/src/tests", "--gtest_filter=*")
			},
			want: "/src/build/tests/tests /src/tests '--gtest_filter=*'",
		},
		{
			name: "stage env prefix",
			ec: func() *runtime.ExecutionContext {
				ec := runtime.NewExecutionContext(context.Background(), "/src/TrezorCryptoTests")
				ec.Env["CK_TIMEOUT_MULTIPLIER"] = "4"
				return ec
			},
			want: "CK_TIMEOUT_MULTIPLIER=4 /src/TrezorCryptoTests",
		},
		{
			name: "spaces",
			ec: func() *runtime.ExecutionContext {
				return runtime.NewExecutionContext(context.Background(), "/my repo/tools/lint")
			},
			want: "'/my repo/tools/lint'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatInvocation(tt.ec()); got != tt.want {
				t.Errorf("FormatInvocation() = %q, want %q", got, tt.want)
			}
		})
	}
}
