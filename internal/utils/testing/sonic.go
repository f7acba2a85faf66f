package expect

import (
	"github.com/bytedance/sonic"
	"github.com/yusing/envinject/internal/common"
)

func init() {
	if common.IsTest {
		sonic.ConfigDefault = sonic.Config{
			SortMapKeys: true,
		}.Froze()
	}
}
