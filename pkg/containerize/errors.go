// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package containerize

import (
	"context"
	"errors"

	"github.com/spack/containerize/pkg/catalog"
	"github.com/spack/containerize/pkg/config"
	apperrors "github.com/spack/containerize/pkg/errors"
)

// ToStructured classifies a pipeline error for the outer surfaces.
// The original error stays reachable through errors.As.
func ToStructured(err error) *apperrors.StructuredError {
	if err == nil {
		return nil
	}

	var se *apperrors.StructuredError
	if errors.As(err, &se) {
		return se
	}

	var ve *config.ValidationError
	if errors.As(err, &ve) {
		details := map[string]any{"reason": ve.Reason}
		if ve.Path != "" {
			details["path"] = ve.Path
		}
		if ve.Line > 0 {
			details["line"] = ve.Line
		}
		return apperrors.WrapWithContext(apperrors.ErrCodeInvalidConfig, "Invalid environment", err, details)
	}

	var ue *catalog.UnknownOSError
	if errors.As(err, &ue) {
		se := apperrors.WrapWithContext(apperrors.ErrCodeUnknownOS, "Unknown bootstrap OS", err,
			map[string]any{"os": ue.ID, "known": ue.Known})
		if s := ue.Suggestion(); s != "" {
			se = se.With("suggestion", s)
		}
		return se
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, "Recipe generation timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(apperrors.ErrCodeUnavailable, "Recipe generation canceled", err)
	}

	return apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to generate recipe", err)
}
