package gates

import (
	"fmt"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// CheckSize passes iff size <= limitMB MiB
func CheckSize(size int64, limitMB int) Decision {
	if size <= int64(limitMB)*1024*1024 {
		return pass()
	}
	return reject(pipeline.CodeFileTooLarge, fmt.Sprintf("File exceeds size limit of %dMB.", limitMB))
}
