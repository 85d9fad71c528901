/*

Mutsim estimates protein-level outcomes of copying an mRNA coding
sequence for several rounds with an error-prone polymerase, given a
per-round nucleotide substitution matrix.

The basic usage of mutsim looks like this:

	mutsim analyze cds.fst bias.csv --rounds 5

, this computes the probability of the protein being unchanged, the
distribution of the number of nonsilent codon changes and the
probabilities of premature stop, lost stop and lost start.

A region of interest (1-based nucleotide positions) can be added:

	mutsim analyze cds.fst bias.csv --rounds 5 --region 300-600

The same figures can be estimated by simulation:

	mutsim simulate cds.fst bias.csv --rounds 5 --trials 100000

The substitution matrix is a CSV file with the header A,C,G,U and four
rows in the same order (or a YAML file, see package subst). Every row
should sum to one.

Both the codon positions of the sequence and the nucleotide positions
of a codon are assumed to mutate independently.

*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/codon"
	"bitbucket.org/Davydov/mutsim/risk"
	"bitbucket.org/Davydov/mutsim/store"
	"bitbucket.org/Davydov/mutsim/subst"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("mutsim")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("mutsim", "protein outcomes under biased polymerase errors").Version(version)

	// model parameters
	gcodeID = app.Flag("gcode", "NCBI genetic code id, standard by default").Default("1").Int()
	rounds  = app.Flag("rounds", "number of replication rounds R").Short('r').Default("1").Int()
	region  = app.Flag("region", "nucleotide region of interest, e.g. 300-600 (1-based, inclusive)").String()
	findCDS = app.Flag("find-cds", "use the first AUG up to the first in-frame stop codon as CDS").Bool()

	// input/output
	dbFileName = app.Flag("db", "cache results in a database file").String()
	outLogF    = app.Flag("log", "write log to a file").String()
	logMaxSize = app.Flag("logmaxsize", "maximum log file size in megabytes before rotation").Default("10").Int()
	logLevel   = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF      = app.Flag("json", "write json output to a file").String()
	plotF      = app.Flag("plot", "plot the nonsilent count distribution to a PNG file").String()
	showCodons = app.Flag("codons", "print per-codon risks").Bool()
	maxK       = app.Flag("maxk", "print distribution for k=0..maxk").Default("10").Int()

	// analyze command
	analyzeCmd           = app.Command("analyze", "compute risks analytically")
	analyzeFastaFileName = analyzeCmd.Arg("fasta", "mRNA FASTA (CDS: AUG...STOP)").Required().ExistingFile()
	analyzeBiasFileName  = analyzeCmd.Arg("bias", "4x4 per-round substitution matrix (CSV or YAML)").Required().ExistingFile()

	// simulate command
	simulateCmd           = app.Command("simulate", "estimate risks by simulation")
	simulateFastaFileName = simulateCmd.Arg("fasta", "mRNA FASTA (CDS: AUG...STOP)").Required().ExistingFile()
	simulateBiasFileName  = simulateCmd.Arg("bias", "4x4 per-round substitution matrix (CSV or YAML)").Required().ExistingFile()
	trials                = simulateCmd.Flag("trials", "number of simulated sequences").Default("10000").Int()
	nThreads              = simulateCmd.Flag("nt", "number of threads to use").Int()
	seed                  = simulateCmd.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	timeout               = simulateCmd.Flag("timeout", "stop simulation after this time, e.g. 10m").Duration()
	compare               = simulateCmd.Flag("compare", "compute analytic results as well and compare").Bool()

	// codes command
	codesCmd = app.Command("codes", "list available genetic codes")
)

// input stores all the parsed inputs.
type input struct {
	seq    *codon.Sequence
	m      *subst.Matrix
	mr     *subst.Matrix
	region *codon.Region
}

// readInput reads sequence and matrix files and validates all the
// inputs.
func readInput(fastaFileName, biasFileName string) (*input, error) {
	gcode, ok := bio.GeneticCodes[*gcodeID]
	if !ok {
		return nil, fmt.Errorf("couldn't load genetic code with id=%d", *gcodeID)
	}
	log.Infof("Genetic code: %d, \"%s\"", gcode.ID, gcode.Name)

	fastaFile, err := os.Open(fastaFileName)
	if err != nil {
		return nil, err
	}
	defer fastaFile.Close()

	seqs, err := bio.ParseFasta(fastaFile)
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no sequences in %s", fastaFileName)
	}
	if len(seqs) > 1 {
		log.Warningf("%d sequences in %s, using the first one", len(seqs), fastaFileName)
	}

	nseq := bio.CleanRNA(seqs[0].Sequence)
	if *findCDS {
		nseq, err = bio.ExtractCDS(nseq, gcode)
		if err != nil {
			return nil, err
		}
	}

	in := &input{}
	in.seq, err = codon.NewSequence(seqs[0].Name, nseq, gcode)
	if err != nil {
		return nil, err
	}
	log.Infof("Read sequence of %d codons", in.seq.Len())

	in.m, err = subst.Read(biasFileName)
	if err != nil {
		return nil, err
	}
	log.Infof("Per-round matrix: %v", in.m)

	in.mr, err = in.m.Power(*rounds)
	if err != nil {
		return nil, err
	}
	log.Infof("Matrix after %d rounds: %v", *rounds, in.mr)

	if *region != "" {
		r, err := codon.ParseRegion(*region)
		if err != nil {
			return nil, err
		}
		if err = r.Validate(in.seq.NucLen()); err != nil {
			return nil, err
		}
		in.region = &r
	}
	return in, nil
}

// openStore opens the result cache if requested.
func openStore() *store.Store {
	if *dbFileName == "" {
		return store.New(nil)
	}
	s, err := store.Open(*dbFileName)
	if err != nil {
		log.Fatal("Error opening database:", err)
	}
	return s
}

// analyze computes analytic results, using the cache if possible.
func analyze(in *input, s *store.Store) *risk.Result {
	key := store.Key(in.seq, in.m, *rounds, in.region, 0, 0, 0)
	res := &risk.Result{}
	if ok, err := s.Load(store.ANALYTIC, key, res); err != nil {
		log.Warning("Error reading cached result:", err)
	} else if ok {
		return res
	}

	res, err := risk.Aggregate(in.seq, in.mr, in.region)
	if err != nil {
		log.Fatal(err)
	}
	s.Save(store.ANALYTIC, key, res)
	return res
}

// simulate runs the simulation with the given number of workers,
// using the cache if possible.
func simulate(in *input, s *store.Store, workers int) *risk.SimResult {
	key := store.Key(in.seq, in.m, *rounds, in.region, *trials, workers, *seed)
	res := &risk.SimResult{}
	if ok, err := s.Load(store.SIMULATED, key, res); err != nil {
		log.Warning("Error reading cached result:", err)
	} else if ok {
		return res
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	res, err := risk.Simulate(ctx, in.seq, in.mr, risk.SimOptions{
		Trials:  *trials,
		Workers: workers,
		Seed:    *seed,
		Region:  in.region,
	})
	if err != nil {
		log.Fatal("Simulation failed:", err)
	}
	s.Save(store.SIMULATED, key, res)
	return res
}

// setupLogging configures logging backend and levels.
func setupLogging() {
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		backend = logging.NewLogBackend(&lumberjack.Logger{
			Filename:   *outLogF,
			MaxSize:    *logMaxSize,
			MaxBackups: 3,
		}, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, module := range []string{"mutsim", "subst", "codon", "risk", "store"} {
		logging.SetLevel(level, module)
	}
}

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	startTime := time.Now()

	setupLogging()

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	summary := &Summary{
		Version:     version,
		CommandLine: os.Args,
		Rounds:      *rounds,
	}

	s := openStore()
	defer s.Close()

	var in *input
	var err error

	switch cmd {
	case codesCmd.FullCommand():
		printGeneticCodes(os.Stdout)
		return
	case analyzeCmd.FullCommand():
		in, err = readInput(*analyzeFastaFileName, *analyzeBiasFileName)
		if err != nil {
			log.Fatal(err)
		}
		summary.setInput(in)
		summary.Analytic = analyze(in, s)
		printResult(os.Stdout, in, summary.Analytic, nil)
		if *plotF != "" {
			if err := plotDistribution(summary.Analytic.Nonsilent, "Analytic", *plotF); err != nil {
				log.Error("Error creating plot:", err)
			}
		}
	case simulateCmd.FullCommand():
		in, err = readInput(*simulateFastaFileName, *simulateBiasFileName)
		if err != nil {
			log.Fatal(err)
		}
		summary.setInput(in)
		if *seed == -1 {
			*seed = time.Now().UnixNano()
			log.Debug("Random seed from time")
		}
		log.Infof("Random seed=%v", *seed)
		summary.Seed = *seed
		summary.NThreads = *nThreads
		if summary.NThreads <= 0 {
			summary.NThreads = runtime.GOMAXPROCS(0)
		}

		summary.Simulated = simulate(in, s, summary.NThreads)
		if *compare {
			summary.Analytic = analyze(in, s)
		}
		printResult(os.Stdout, in, summary.Simulated.Empirical, summary.Simulated)
		if *compare {
			printComparison(os.Stdout, summary.Analytic, summary.Simulated)
		}
		if *plotF != "" {
			if err := plotDistribution(summary.Simulated.Empirical.Nonsilent, "Simulated", *plotF); err != nil {
				log.Error("Error creating plot:", err)
			}
		}
	}

	if *showCodons && in != nil {
		if err := printCodons(os.Stdout, in); err != nil {
			log.Fatal(err)
		}
	}

	deltaT := time.Since(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
