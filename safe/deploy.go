package safe

import (
	"context"

	"github.com/AlexZinkM/safe-backend/internal/logging"
	"github.com/AlexZinkM/safe-backend/internal/model"
)

// Deploy creates the wallet of ownerAddress via createProxyWithNonce on the
// proxy factory. It fails with ErrAlreadyExists without submitting anything
// if a contract is already present at the derived address.
func (s *Service) Deploy(ctx context.Context, ownerAddress string) (*model.SafeResponse, error) {
	owner, err := ParseAddress("owner", ownerAddress)
	if err != nil {
		return nil, err
	}

	d, err := s.derive(ctx, owner)
	if err != nil {
		return nil, err
	}

	deployed, err := s.isDeployed(ctx, d.address)
	if err != nil {
		return nil, err
	}
	if deployed {
		return nil, ErrAlreadyExists
	}

	s.logger.Info().
		Str(logging.FieldOwner, owner.Hex()).
		Str(logging.FieldSafe, d.address.Hex()).
		Msg("deploying safe")

	return s.submit(ctx, "createProxyWithNonce", s.template.ProxyFactory, funcCreateProxyWithNonce,
		s.template.MasterCopy,
		d.initializer,
		s.template.SaltNonce,
	)
}
