package app

import (
	"context"
	"time"

	"outcomelab/adapters/lasso"
	"outcomelab/adapters/tree"
	"outcomelab/domain/core"
	"outcomelab/domain/run"
	"outcomelab/domain/table"
	"outcomelab/internal"
	"outcomelab/internal/config"
	"outcomelab/internal/dataprep"
	"outcomelab/internal/errors"
	"outcomelab/internal/profile"
	"outcomelab/internal/report"
	"outcomelab/internal/selection"
	"outcomelab/ports"
)

// ReportService runs the whole analysis pipeline once: load, clean, profile,
// select predictors by backward elimination, fit companion models, render the
// report, and optionally archive the run.
type ReportService struct {
	cfg     *config.Config
	reader  ports.TableReader
	fitter  ports.BinomialFitter
	archive ports.RunArchive // nil disables archival
	logger  *internal.Logger
}

// NewReportService wires the pipeline's collaborators
func NewReportService(cfg *config.Config, reader ports.TableReader, fitter ports.BinomialFitter, archive ports.RunArchive, logger *internal.Logger) *ReportService {
	return &ReportService{cfg: cfg, reader: reader, fitter: fitter, archive: archive, logger: logger}
}

// Run executes the pipeline and returns the run summary
func (s *ReportService) Run(ctx context.Context) (*run.Summary, error) {
	outcome := core.ColumnKey(s.cfg.Data.Outcome)
	summary := run.NewSummary(s.cfg.Data.File, outcome, s.cfg.Models.Seed)

	raw, err := s.reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}
	s.logger.Info("loaded %s: %d rows, %d columns", s.cfg.Data.File, raw.Rows(), len(raw.Columns()))

	tbl, err := dataprep.DropMissingOutcome(raw, outcome)
	if err != nil {
		return nil, errors.Wrap(err, "failed to clean dataset")
	}

	// Profile before imputation so the report describes the data as loaded,
	// missing cells included.
	columns := profile.Profile(tbl)

	tbl, err = dataprep.Impute(tbl, outcome, dataprep.ImputeMethod(s.cfg.Data.Impute))
	if err != nil {
		return nil, errors.Wrap(err, "failed to impute predictors")
	}
	summary.Rows = tbl.Rows()
	summary.Columns = len(tbl.Columns())

	selector := selection.NewWithLogger(s.fitter, s.logger)
	selected, err := selector.Run(ctx, tbl, outcome, tbl.PredictorKeys(outcome))
	if err != nil {
		return nil, err
	}
	summary.BaselineScore = selected.Baseline
	summary.FinalScore = selected.Score
	summary.Selected = selected.Predictors

	finalFit, err := s.fitter.Fit(ctx, tbl, outcome, selected.Predictors)
	if err != nil {
		return nil, errors.FitFailed("final model refit failed", err)
	}

	if err := s.fitCompanions(tbl, outcome, summary); err != nil {
		return nil, err
	}

	lassoResult, err := lasso.NewFitter(s.cfg.Models.LassoLambda).Fit(ctx, tbl, outcome, tbl.PredictorKeys(outcome))
	if err != nil {
		return nil, errors.Wrap(err, "lasso fit failed")
	}
	summary.LassoNonzero = lassoResult.Nonzero
	summary.FinishedAt = time.Now()

	renderer := report.NewRenderer(s.cfg.Report.HTML)
	input := report.Input{
		Summary:   summary,
		Columns:   columns,
		Selection: selected,
		FinalFit:  finalFit,
		Lasso:     lassoResult,
	}
	if err := renderer.WriteFiles(s.cfg.Report.OutputDir, input); err != nil {
		return nil, errors.Wrap(err, "failed to write report")
	}
	s.logger.Info("report written to %s", s.cfg.Report.OutputDir)

	if s.archive != nil {
		if err := s.archive.Save(ctx, summary); err != nil {
			return nil, errors.Wrap(err, "failed to archive run")
		}
		s.logger.Info("run %s archived", summary.RunID)
	}

	return summary, nil
}

// fitCompanions trains the tree and forest on a deterministic holdout split
// and records their test accuracy.
func (s *ReportService) fitCompanions(tbl *table.Table, outcome core.ColumnKey, summary *run.Summary) error {
	x, _, y, err := dataprep.EncodeFeatures(tbl, outcome)
	if err != nil {
		return errors.Wrap(err, "failed to encode tree features")
	}

	trainIdx, testIdx := dataprep.HoldoutSplit(len(x), s.cfg.Models.HoldoutFrac)
	xTest := make([][]float64, len(testIdx))
	yTest := make([]int, len(testIdx))
	for i, idx := range testIdx {
		xTest[i] = x[idx]
		yTest[i] = y[idx]
	}

	dt := tree.NewClassifier(tree.WithMaxDepth(s.cfg.Models.TreeDepth), tree.WithMinLeaf(5))
	if err := dt.FitIndices(x, y, trainIdx, nil); err != nil {
		return errors.Wrap(err, "decision tree fit failed")
	}
	summary.TreeAccuracy = tree.Accuracy(yTest, dt.Predict(xTest))

	forest := tree.NewForest(
		tree.WithNEstimators(s.cfg.Models.ForestTrees),
		tree.WithForestDepth(s.cfg.Models.TreeDepth),
		tree.WithForestMinLeaf(2),
		tree.WithForestSeed(s.cfg.Models.Seed),
	)
	xTrain := make([][]float64, len(trainIdx))
	yTrain := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		xTrain[i] = x[idx]
		yTrain[i] = y[idx]
	}
	if err := forest.Fit(xTrain, yTrain); err != nil {
		return errors.Wrap(err, "random forest fit failed")
	}
	summary.ForestAccuracy = tree.Accuracy(yTest, forest.Predict(xTest))

	s.logger.Debug("companion models: tree %.3f, forest %.3f", summary.TreeAccuracy, summary.ForestAccuracy)
	return nil
}
